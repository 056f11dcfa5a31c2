package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"fitbook/test/integration/testutil"
)

type ruleResponse struct {
	ID           string `json:"id"`
	TrainerID    string `json:"trainer_id"`
	DayOfWeek    int    `json:"day_of_week"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	IsRecurring  *bool  `json:"is_recurring"`
	SpecificDate string `json:"specific_date"`
	IsAvailable  bool   `json:"is_available"`
}

type windowResponse struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	RuleID    string `json:"rule_id"`
}

// upcoming returns the next occurrence of the given weekday that is at
// least a week away, at midnight UTC. Keeps booking starts in the future.
func upcoming(day time.Weekday) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != day {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func recurringRule(day time.Weekday, start, end string) map[string]interface{} {
	return map[string]interface{}{
		"day_of_week":  int(day),
		"start_time":   start,
		"end_time":     end,
		"is_recurring": true,
		"is_available": true,
	}
}

func replaceRules(t *testing.T, client *testutil.Client, trainerID string, rules ...map[string]interface{}) {
	t.Helper()

	resp := client.PUT(t, fmt.Sprintf("/api/v1/trainers/%s/rules", trainerID),
		map[string]interface{}{"rules": rules})
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)
}

func getWindows(t *testing.T, client *testutil.Client, trainerID, date string) []windowResponse {
	t.Helper()

	resp := client.GET(t, fmt.Sprintf("/api/v1/trainers/%s/windows?date=%s", trainerID, date))
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var windows []windowResponse
	resp.Data(t, &windows)
	return windows
}

func TestAvailabilityRules(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, availability, _ := env.Setup(t)
	defer env.Cleanup(t, mongo)

	const trainerID = "trainer-rules-1"
	monday := upcoming(time.Monday)
	mondayDate := monday.Format("2006-01-02")
	tuesdayDate := monday.AddDate(0, 0, 1).Format("2006-01-02")

	replaceRules(t, availability, trainerID,
		recurringRule(time.Monday, "09:00:00", "12:00:00"),
		recurringRule(time.Wednesday, "14:00:00", "17:00:00"),
	)

	resp := availability.GET(t, fmt.Sprintf("/api/v1/trainers/%s/rules", trainerID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var rules []ruleResponse
	resp.Data(t, &rules)
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}

	windows := getWindows(t, availability, trainerID, mondayDate)
	if len(windows) != 1 {
		t.Fatalf("expected 1 window on Monday, got %d", len(windows))
	}
	if windows[0].StartTime != "09:00:00" || windows[0].EndTime != "12:00:00" {
		t.Errorf("unexpected window %s-%s", windows[0].StartTime, windows[0].EndTime)
	}

	if windows := getWindows(t, availability, trainerID, tuesdayDate); len(windows) != 0 {
		t.Fatalf("expected no windows on Tuesday, got %d", len(windows))
	}

	// Replacing again discards the old set entirely.
	replaceRules(t, availability, trainerID,
		recurringRule(time.Tuesday, "08:00:00", "10:00:00"),
	)

	if windows := getWindows(t, availability, trainerID, mondayDate); len(windows) != 0 {
		t.Fatalf("expected Monday windows gone after replace, got %d", len(windows))
	}
	if windows := getWindows(t, availability, trainerID, tuesdayDate); len(windows) != 1 {
		t.Fatalf("expected 1 window on Tuesday after replace, got %d", len(windows))
	}
}

func TestExceptionSuppressesSingleOccurrence(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, availability, _ := env.Setup(t)
	defer env.Cleanup(t, mongo)

	const trainerID = "trainer-exc-1"
	monday := upcoming(time.Monday)
	thisWeek := monday.Format("2006-01-02")
	nextWeek := monday.AddDate(0, 0, 7).Format("2006-01-02")

	replaceRules(t, availability, trainerID,
		recurringRule(time.Monday, "09:00:00", "12:00:00"),
	)

	resp := availability.GET(t, fmt.Sprintf("/api/v1/trainers/%s/rules", trainerID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var rules []ruleResponse
	resp.Data(t, &rules)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	resp = availability.POST(t, fmt.Sprintf("/api/v1/trainers/%s/exceptions", trainerID),
		map[string]interface{}{"rule_id": rules[0].ID, "date": thisWeek})
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	if windows := getWindows(t, availability, trainerID, thisWeek); len(windows) != 0 {
		t.Fatalf("expected excepted Monday to have no windows, got %d", len(windows))
	}
	if windows := getWindows(t, availability, trainerID, nextWeek); len(windows) != 1 {
		t.Fatalf("expected following Monday untouched, got %d windows", len(windows))
	}
}

func TestOneOffRuleAppliesToSingleDate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, availability, _ := env.Setup(t)
	defer env.Cleanup(t, mongo)

	const trainerID = "trainer-oneoff-1"
	saturday := upcoming(time.Saturday)
	saturdayDate := saturday.Format("2006-01-02")
	nextSaturday := saturday.AddDate(0, 0, 7).Format("2006-01-02")

	resp := availability.POST(t, fmt.Sprintf("/api/v1/trainers/%s/rules/oneoff", trainerID),
		map[string]interface{}{
			"specific_date": saturdayDate,
			"start_time":    "10:00:00",
			"end_time":      "13:00:00",
			"is_available":  true,
		})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	if windows := getWindows(t, availability, trainerID, saturdayDate); len(windows) != 1 {
		t.Fatalf("expected 1 window on the one-off date, got %d", len(windows))
	}
	if windows := getWindows(t, availability, trainerID, nextSaturday); len(windows) != 0 {
		t.Fatalf("expected no windows a week later, got %d", len(windows))
	}
}

func TestSlotsForDate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, availability, _ := env.Setup(t)
	defer env.Cleanup(t, mongo)

	const trainerID = "trainer-slots-1"
	monday := upcoming(time.Monday)
	mondayDate := monday.Format("2006-01-02")

	replaceRules(t, availability, trainerID,
		recurringRule(time.Monday, "09:00:00", "11:30:00"),
	)

	resp := availability.GET(t, fmt.Sprintf("/api/v1/trainers/%s/slots?date=%s", trainerID, mondayDate))
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var slots []windowResponse
	resp.Data(t, &slots)
	if len(slots) != 2 {
		t.Fatalf("expected 2 hour-long slots from a 2.5h window, got %d", len(slots))
	}
	if slots[0].StartTime != "09:00:00" || slots[1].StartTime != "10:00:00" {
		t.Errorf("unexpected slot starts %s, %s", slots[0].StartTime, slots[1].StartTime)
	}
}
