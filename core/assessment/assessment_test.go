package assessment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/assessment"
	"github.com/studsight/studsight/core/board"
	"github.com/studsight/studsight/core/student"
	inmemdb "github.com/studsight/studsight/storage/database/inmem"
)

type mailRecorder struct{}

func (mailRecorder) SendMessages(...*core.EmailMessage) {}

func newServices(t *testing.T) (*assessment.Service, student.Student) {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)

	boards := board.NewService(inmemdb.NewBoardRepository(db), student.Subjects)
	students := student.NewService(inmemdb.NewStudentRepository(db), boards, mailRecorder{}, nil)
	svc := assessment.NewService(inmemdb.NewAssessmentRepository(db), students)

	st, err := students.Register(student.NewStudent{
		FirstName: "Alice", Surname: "Mwangi",
		DOB:    time.Now().AddDate(-17, 0, 0).Format("2006-01-02"),
		Gender: "F", YearGroup: 12, Mastery: "B",
		Email:    "alice@school.test",
		Subjects: []string{"Mathematics", "Science", "Computing", "English"},
		GuardianName: "Grace Mwangi", GuardianPhone: "+254700000000",
	})
	require.NoError(t, err)
	return svc, st
}

func validNewAssessment(studentID int) assessment.NewAssessment {
	return assessment.NewAssessment{
		StudentID: studentID,
		Subject:   "Mathematics",
		Type:      assessment.TypeMidpoint1,
		Date:      time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02"),
		Score:     72.5,
	}
}

func TestNewAssessmentValidate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		na := validNewAssessment(1)
		assert.NoError(t, na.Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		na := validNewAssessment(1)
		na.Type = "final"
		assert.Error(t, na.Validate())
	})

	t.Run("unknown subject", func(t *testing.T) {
		na := validNewAssessment(1)
		na.Subject = "Art"
		assert.Error(t, na.Validate())
	})

	t.Run("malformed date", func(t *testing.T) {
		na := validNewAssessment(1)
		na.Date = "20/03/2026"
		var verr *core.ValidationError
		require.ErrorAs(t, na.Validate(), &verr)
		assert.Equal(t, "date", verr.Fields[0].Field)
	})

	t.Run("future date", func(t *testing.T) {
		na := validNewAssessment(1)
		na.Date = time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
		var verr *core.ValidationError
		require.ErrorAs(t, na.Validate(), &verr)
		assert.Equal(t, "assessment date cannot be in the future", verr.Fields[0].Error)
	})

	t.Run("too far past", func(t *testing.T) {
		na := validNewAssessment(1)
		na.Date = time.Now().UTC().AddDate(-2, 0, -7).Format("2006-01-02")
		var verr *core.ValidationError
		require.ErrorAs(t, na.Validate(), &verr)
		assert.Equal(t, "assessment date cannot be more than two years past", verr.Fields[0].Error)
	})

	t.Run("negative score", func(t *testing.T) {
		na := validNewAssessment(1)
		na.Score = -1
		assert.Error(t, na.Validate())
	})
}

func TestLog(t *testing.T) {
	svc, st := newServices(t)

	t.Run("ok", func(t *testing.T) {
		na := validNewAssessment(st.ID)
		a, err := svc.Log(na)
		require.NoError(t, err)
		assert.NotZero(t, a.ID)
		assert.Equal(t, st.ID, a.StudentID)
		assert.Equal(t, na.Subject, a.Subject)
		assert.Equal(t, na.Date, a.Date.Format("2006-01-02"))
		assert.Equal(t, 72.5, a.Score)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.Log(validNewAssessment(999))
		assert.Equal(t, student.ErrNotFound, err)
	})

	t.Run("subject not taken", func(t *testing.T) {
		na := validNewAssessment(st.ID)
		na.Subject = "History" // valid subject, not on Alice's list
		_, err := svc.Log(na)
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "subject", verr.Fields[0].Field)
	})

	t.Run("at most three per type and subject", func(t *testing.T) {
		na := validNewAssessment(st.ID)
		na.Subject = "Science"
		for i := 0; i < 2; i++ { // two more on top of none
			_, err := svc.Log(na)
			require.NoError(t, err)
		}
		_, err := svc.Log(na)
		require.NoError(t, err)

		_, err = svc.Log(na)
		assert.Equal(t, assessment.ErrTooManyAssessments, err)

		// a different type of the same subject is still open
		na.Type = assessment.TypeEndpoint
		_, err = svc.Log(na)
		assert.NoError(t, err)
	})
}

func TestStudentAssessments(t *testing.T) {
	svc, st := newServices(t)

	day := func(daysAgo int) string {
		return time.Now().UTC().AddDate(0, 0, -daysAgo).Format("2006-01-02")
	}
	log := func(subject, typ, date string, score float64) assessment.Assessment {
		a, err := svc.Log(assessment.NewAssessment{
			StudentID: st.ID, Subject: subject, Type: typ, Date: date, Score: score,
		})
		require.NoError(t, err)
		return a
	}

	oldest := log("Mathematics", assessment.TypeMidpoint1, day(30), 60)
	middle := log("Science", assessment.TypeMidpoint1, day(14), 75)
	newest := log("Mathematics", assessment.TypeMidpoint2, day(2), 81)

	as, err := svc.StudentAssessments(st.ID)
	require.NoError(t, err)
	require.Len(t, as, 3)
	assert.Equal(t, []int{newest.ID, middle.ID, oldest.ID}, []int{as[0].ID, as[1].ID, as[2].ID}, "newest first")

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.StudentAssessments(999)
		assert.Equal(t, student.ErrNotFound, err)
	})
}

func TestStudentSummary(t *testing.T) {
	svc, st := newServices(t)

	day := func(daysAgo int) string {
		return time.Now().UTC().AddDate(0, 0, -daysAgo).Format("2006-01-02")
	}
	log := func(subject, typ, date string, score float64) {
		_, err := svc.Log(assessment.NewAssessment{
			StudentID: st.ID, Subject: subject, Type: typ, Date: date, Score: score,
		})
		require.NoError(t, err)
	}

	// a retake supersedes the earlier midpoint1 score
	log("Mathematics", assessment.TypeMidpoint1, day(30), 55)
	log("Mathematics", assessment.TypeMidpoint1, day(10), 68)
	log("Mathematics", assessment.TypeEndpoint, day(3), 74)
	log("Science", assessment.TypeMidpoint2, day(5), 90)

	summaries, err := svc.StudentSummary(st.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 4, "one summary per subject taken")

	bySubject := make(map[string]assessment.Summary, len(summaries))
	for _, s := range summaries {
		bySubject[s.Subject] = s
	}

	maths := bySubject["Mathematics"]
	require.NotNil(t, maths.Midpoint1)
	assert.Equal(t, 68.0, *maths.Midpoint1, "latest retake wins")
	assert.Nil(t, maths.Midpoint2)
	require.NotNil(t, maths.Endpoint)
	assert.Equal(t, 74.0, *maths.Endpoint)

	science := bySubject["Science"]
	assert.Nil(t, science.Midpoint1)
	require.NotNil(t, science.Midpoint2)
	assert.Equal(t, 90.0, *science.Midpoint2)

	english := bySubject["English"]
	assert.Nil(t, english.Midpoint1)
	assert.Nil(t, english.Midpoint2)
	assert.Nil(t, english.Endpoint)

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.StudentSummary(999)
		assert.Equal(t, student.ErrNotFound, err)
	})
}
