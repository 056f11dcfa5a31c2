package testutil

import (
	"fmt"
	"os"
	"testing"
)

// EnableVar gates the integration suite; it hits live availability and
// bookings services plus a real MongoDB, so it only runs when asked.
const EnableVar = "RUN_INTEGRATION_TESTS"

type TestEnv struct {
	MongoURI        string
	DatabaseName    string
	AvailabilityURL string
	BookingsURL     string
}

func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if os.Getenv(EnableVar) == "" {
		t.Skipf("set %s=1 to run integration tests against live services", EnableVar)
	}

	availabilityPort := getEnv("TEST_AVAILABILITY_PORT", "8080")
	bookingsPort := getEnv("TEST_BOOKINGS_PORT", "8081")

	return &TestEnv{
		MongoURI:        getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName:    getEnv("TEST_DB_NAME", DefaultDatabaseName),
		AvailabilityURL: getEnv("TEST_AVAILABILITY_URL", fmt.Sprintf("http://localhost:%s", availabilityPort)),
		BookingsURL:     getEnv("TEST_BOOKINGS_URL", fmt.Sprintf("http://localhost:%s", bookingsPort)),
	}
}

// Setup cleans the database and waits for both services to report healthy.
// Returned clients target the availability and bookings services in that order.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client, *Client) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanCollections(t)

	availability := NewClient(e.AvailabilityURL)
	availability.WaitForHealthy(t, DefaultHealthCheckTimeout)

	bookings := NewClient(e.BookingsURL)
	bookings.WaitForHealthy(t, DefaultHealthCheckTimeout)

	return mongo, availability, bookings
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanCollections(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const DefaultHealthCheckTimeout = 3 * ConnectionTimeout
