package tests

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/studsight/studsight/core/assessment"
	"github.com/studsight/studsight/core/teacher"
	testutil "github.com/studsight/studsight/tests"
)

func Test_assessmentApi(t *testing.T) {
	db.Reset()

	tchr := testutil.CreateTeacher(t, tchrRepo, "Jane", "Doe", "jane@test.cd", "", "Science", "", teacher.RoleTeacher, true)
	st := testutil.CreateStudent(t, stdRepo, "Alice", "Mwangi", "alice@test.cd", 12, "B", allSubjects)
	token := getToken(t, tchr)

	lastWeek := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	logBody := func(subject, typ string, score float64) []byte {
		return []byte(fmt.Sprintf(
			`{"student_id": %d, "subject": %q, "type": %q, "date": %q, "score": %v}`,
			st.ID, subject, typ, lastWeek, score,
		))
	}

	tests := []httpTest{
		{
			name:     "types require auth",
			path:     "/v1/assessments/types",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "types",
			path:     "/v1/assessments/types",
			token:    token,
			wantData: marshallObj(t, assessment.Types),
		},
		{
			name:     "unknown student",
			method:   http.MethodPost,
			path:     "/v1/assessments",
			token:    token,
			body:     []byte(`{"student_id": 999, "subject": "Science", "type": "midpoint1", "date": "` + lastWeek + `", "score": 50}`),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, errNotFound),
		},
		{
			name:     "subject not taken",
			method:   http.MethodPost,
			path:     "/v1/assessments",
			token:    token,
			body:     logBody("History", "midpoint1", 50),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"subject": "student does not take this subject"}),
		},
		{
			name:     "future date",
			method:   http.MethodPost,
			path:     "/v1/assessments",
			token:    token,
			body:     []byte(fmt.Sprintf(`{"student_id": %d, "subject": "Science", "type": "endpoint", "date": "2090-01-01", "score": 50}`, st.ID)),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"date": "assessment date cannot be in the future"}),
		},
	}
	for _, tt := range tests {
		tt.run(t)
	}

	t.Run("log", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", token, logBody("Science", "midpoint1", 67.5))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("log failed: code = %v; body = %v", rec.Code, rec.Body.String())
		}
		for _, want := range []string{`"subject":"Science"`, `"type":"midpoint1"`, `"score":67.5`} {
			if !strings.Contains(rec.Body.String(), want) {
				t.Errorf("missing %s; body = %v", want, rec.Body.String())
			}
		}
	})

	t.Run("retake cap returns conflict", func(t *testing.T) {
		for i := 0; i < 2; i++ { // two retakes on top of the first
			req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", token, logBody("Science", "midpoint1", 70))
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusCreated {
				t.Fatalf("log failed: code = %v; body = %v", rec.Code, rec.Body.String())
			}
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", token, logBody("Science", "midpoint1", 70))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, http.StatusConflict,
			marshallObj(t, httpErr{Error: assessment.ErrTooManyAssessments.Error()}), rec)
	})

	t.Run("student assessments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/students/%d/assessments", st.ID), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if got := strings.Count(rec.Body.String(), `"type":"midpoint1"`); got != 3 {
			t.Errorf("listed %d assessments; want 3; body = %v", got, rec.Body.String())
		}
	})

	t.Run("summary", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/students/%d/assessments/summary", st.ID), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}
		for _, want := range []string{
			`{"subject":"Science","midpoint1":70,"midpoint2":null,"endpoint":null}`,
			`{"subject":"Mathematics","midpoint1":null,"midpoint2":null,"endpoint":null}`,
		} {
			if !strings.Contains(rec.Body.String(), want) {
				t.Errorf("missing %s; body = %v", want, rec.Body.String())
			}
		}
	})

	t.Run("summary of unknown student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/999/assessments/summary", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, http.StatusNotFound, marshallObj(t, errNotFound), rec)
	})
}
