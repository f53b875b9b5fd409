package auth

import "github.com/juju/loggo"

var logger = loggo.GetLogger("jobportal.auth")

// LogAuthAttempt record an authentication attempt.
// authType is Local or Token, identifier is email or user id and may be empty.
func LogAuthAttempt(authType string, success bool, identifier string, message string) {
	if success {
		logger.Infof("%s auth success: %s", authType, identifier)
		return
	}
	if message == "" {
		logger.Warningf("%s auth fail: %s", authType, identifier)
		return
	}
	logger.Warningf("%s auth fail: %s: %s", authType, identifier, message)
}
