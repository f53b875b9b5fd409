package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/database"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := BuildCLI()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCleanDB_Cancelled(t *testing.T) {
	out, err := run(t, "no\n", "clean-db")

	require.NoError(t, err)
	assert.Contains(t, out, "DROP ALL TABLES")
	assert.Contains(t, out, "Operation cancelled.")
}

func TestCleanDB_ConfirmedNeedsPostgres(t *testing.T) {
	t.Setenv("SECRET_KEY", "cli-test-secret")
	t.Setenv("STORE_BACKEND", "memory")

	_, err := run(t, "YES\n", "clean-db")

	assert.True(t, errors.Is(err, errors.NotSupported), "got %v", err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "--version")

	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestPromptUser(t *testing.T) {
	in := "  recruiter \nHR@Example.com\nemployer\nsecret123\nsecret123"

	u, err := promptUser(newPrompter(strings.NewReader(in)), &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "recruiter", u.Username)
	assert.Equal(t, "hr@example.com", u.Email)
	assert.Equal(t, model.RoleEmployer, u.Role)
	assert.True(t, utilities.VerifyPassword("secret123", u.Password))
}

func TestPromptUser_Invalid(t *testing.T) {
	cases := map[string]string{
		"mismatch":  "a\na@example.com\njobseeker\nsecret123\nsecret124\n",
		"bad role":  "a\na@example.com\nadmin\nsecret123\nsecret123\n",
		"short":     "a\na@example.com\njobseeker\nshort\nshort\n",
		"no email":  "a\n\njobseeker\nsecret123\nsecret123\n",
		"truncated": "a\na@example.com\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := promptUser(newPrompter(strings.NewReader(in)), &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestCreateUser(t *testing.T) {
	store := database.NewMemoryStore(nil)
	ctx := context.Background()

	u := model.User{Email: "hr@example.com", Role: model.RoleEmployer}
	require.NoError(t, createUser(ctx, store, &u))

	stored, err := store.FindUserByEmail(ctx, "hr@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)

	dup := model.User{Email: "hr@example.com", Role: model.RoleEmployer}
	assert.ErrorIs(t, createUser(ctx, store, &dup), apperr.Conflict)
}
