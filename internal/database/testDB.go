package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/himansu2198/Job-Listing-Portal/internal/config"
	m "github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

// TestSeedPassword is the plain password of every seeded user
const TestSeedPassword = "SeedPass123!"

// Fixtures are the records created by Seed
type Fixtures struct {
	// Seeker1 and Seeker2 have complete profiles and a resume
	Seeker1 m.User
	Seeker2 m.User
	// SeekerNoResume has a complete profile but never uploaded a resume
	SeekerNoResume m.User
	Employer1      m.User
	Employer2      m.User

	// Job1 and Job2 belong to Employer1, Job3 to Employer2
	Job1 m.Job
	Job2 m.Job
	Job3 m.Job
}

var testDBInstance *DBinstanceStruct
var testFixtures Fixtures
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, the seeded fixtures and any error encountered during setup.
// A host without a usable Docker daemon yields an error, never a panic.
func GetTestDB() (td func(context.Context, ...testcontainers.TerminateOption) error, db *DBinstanceStruct, f Fixtures, err error) {
	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, testFixtures, nil
	}

	err = recoverSetup(func() error {
		var startErr error
		td, db, f, startErr = startTestDB()
		return startErr
	})
	if err != nil {
		db = nil
	}
	return td, db, f, err
}

// recoverSetup run setup and turn a panic into an error.
// testcontainers panics when it cannot find a Docker host.
func recoverSetup(setup func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("test container setup panicked: %v", r)
		}
	}()
	return setup()
}

func startTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, Fixtures, error) {
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, Fixtures{}, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, Fixtures{}, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, Fixtures{}, err
	}

	db, err := NewDBInstance(config.DBConfig{
		UseConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	})
	if err != nil {
		return dbContainer.Terminate, nil, Fixtures{}, err
	}

	fixtures, err := Seed(context.Background(), NewStore(db))
	if err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, Fixtures{}, err
	}

	testDBInstance = db
	testFixtures = fixtures
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, fixtures, nil
}

// Seed create sample job seekers, employers and jobs in backend.
func Seed(ctx context.Context, backend Backend) (Fixtures, error) {
	hashedPwd, err := utilities.HashPassword(TestSeedPassword)
	if err != nil {
		return Fixtures{}, err
	}

	seeker := func(username, email string, resume *string) m.User {
		return m.User{
			Email:    email,
			Password: hashedPwd,
			Role:     m.RoleJobSeeker,
			EditableProfile: m.EditableProfile{
				Username:            username,
				Phone:               "0800000000",
				Location:            "Bangkok",
				ProfessionalTitle:   "Software Engineer",
				ProfessionalSummary: "Builds backend services",
				Skills:              pq.StringArray{"Go", "SQL"},
			},
			Resume: resume,
		}
	}
	employer := func(username, email string) m.User {
		return m.User{
			Email:           email,
			Password:        hashedPwd,
			Role:            m.RoleEmployer,
			EditableProfile: m.EditableProfile{Username: username},
		}
	}

	f := Fixtures{
		Seeker1:        seeker("seeker_1", "seeker1@example.com", ptr("resumes/seeker_1.pdf")),
		Seeker2:        seeker("seeker_2", "seeker2@example.com", ptr("resumes/seeker_2.pdf")),
		SeekerNoResume: seeker("seeker_no_resume", "seeker3@example.com", nil),
		Employer1:      employer("employer_1", "employer1@example.com"),
		Employer2:      employer("employer_2", "employer2@example.com"),
	}
	for _, u := range []*m.User{&f.Seeker1, &f.Seeker2, &f.SeekerNoResume, &f.Employer1, &f.Employer2} {
		if err := backend.CreateUser(ctx, u); err != nil {
			return Fixtures{}, err
		}
	}

	f.Job1 = m.Job{
		EmployerID: f.Employer1.ID,
		EditableJobInfo: m.EditableJobInfo{
			Title:       "Go Developer",
			Description: "Work on Go microservices and database layers.",
			Location:    "Bangkok (Hybrid)",
			JobType:     "full-time",
			Category:    "Technology",
			Salary:      "60000 THB",
			CompanyName: "TechNova",
		},
	}
	f.Job2 = m.Job{
		EmployerID: f.Employer1.ID,
		EditableJobInfo: m.EditableJobInfo{
			Title:       "Frontend Developer Intern",
			Description: "Assist building component library in React.",
			Location:    "Remote",
			JobType:     "internship",
			Category:    "Technology",
			Salary:      "12000 THB",
			CompanyName: "TechNova",
		},
	}
	f.Job3 = m.Job{
		EmployerID: f.Employer2.ID,
		EditableJobInfo: m.EditableJobInfo{
			Title:       "Data Analyst",
			Description: "Support data cleansing and dashboard creation.",
			Location:    "Chiang Mai (On-site)",
			JobType:     "part-time",
			Category:    "Finance",
			Salary:      "30000 THB",
			CompanyName: "DataForge",
		},
	}
	for _, j := range []*m.Job{&f.Job1, &f.Job2, &f.Job3} {
		if err := backend.CreateJob(ctx, j); err != nil {
			return Fixtures{}, err
		}
	}

	return f, nil
}

// ptr helper
func ptr[T any](v T) *T { return &v }
