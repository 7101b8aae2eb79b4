package student

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/board"
)

type fakeRepo struct {
	students   map[int]Student
	timetables map[int][]TimetableDay
	lastID     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		students:   make(map[int]Student),
		timetables: make(map[int][]TimetableDay),
	}
}

func (r *fakeRepo) CheckEmailUniqueness(email string, excluded ...Student) error {
	for _, st := range r.students {
		if st.Email != email {
			continue
		}
		excl := false
		for _, ex := range excluded {
			if ex.ID == st.ID {
				excl = true
			}
		}
		if !excl {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateStudent(st Student) (Student, error) {
	r.lastID++
	st.ID = r.lastID
	r.students[st.ID] = st
	return st, nil
}

func (r *fakeRepo) QueryAllStudents() ([]Student, error) {
	all := make([]Student, 0, len(r.students))
	for _, st := range r.students {
		all = append(all, st)
	}
	return all, nil
}

func (r *fakeRepo) GetStudentByID(id int) (Student, error) {
	st, ok := r.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	return st, nil
}

func (r *fakeRepo) GetStudentByEmail(email string) (Student, error) {
	for _, st := range r.students {
		if st.Email == email {
			return st, nil
		}
	}
	return Student{}, ErrNotFound
}

func (r *fakeRepo) FilterStudents(filter QueryFilter) ([]Student, error) {
	var res []Student
	for _, st := range r.students {
		if filter.YearGroup != 0 && st.YearGroup != filter.YearGroup {
			continue
		}
		if filter.Mastery != "" && st.Mastery != filter.Mastery {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(st.Name()), s) && !strings.Contains(st.Email, s) {
				continue
			}
		}
		res = append(res, st)
	}
	return res, nil
}

func (r *fakeRepo) UpdateStudent(st Student) (Student, error) {
	if _, ok := r.students[st.ID]; !ok {
		return Student{}, ErrNotFound
	}
	r.students[st.ID] = st
	return st, nil
}

func (r *fakeRepo) DeleteStudentsByID(ids ...int) error {
	for _, id := range ids {
		delete(r.students, id)
		delete(r.timetables, id)
	}
	return nil
}

func (r *fakeRepo) GetTimetable(studentID int) ([]TimetableDay, error) {
	return r.timetables[studentID], nil
}

func (r *fakeRepo) SaveTimetable(studentID int, days []TimetableDay) error {
	r.timetables[studentID] = days
	return nil
}

type fakeBoardRepo struct {
	posts  []board.Post
	lastID int
}

func (r *fakeBoardRepo) CreatePost(post board.Post) (board.Post, error) {
	r.lastID++
	post.ID = r.lastID
	r.posts = append(r.posts, post)
	return post, nil
}

func (r *fakeBoardRepo) QueryPostsByBoard(name string) ([]board.Post, error) {
	var res []board.Post
	for _, p := range r.posts {
		if p.Board == name {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *fakeBoardRepo) GetPostByID(id int) (board.Post, error) {
	for _, p := range r.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return board.Post{}, board.ErrNotFound
}

func (r *fakeBoardRepo) DeletePostsByID(ids ...int) error { return nil }

type emailRecorder struct {
	sent []*core.EmailMessage
}

func (s *emailRecorder) SendMessages(messages ...*core.EmailMessage) {
	s.sent = append(s.sent, messages...)
}

func newTestService() (*Service, *fakeRepo, *fakeBoardRepo, *emailRecorder) {
	repo := newFakeRepo()
	boardRepo := new(fakeBoardRepo)
	mailSvc := new(emailRecorder)
	boards := board.NewService(boardRepo, Subjects)
	return NewService(repo, boards, mailSvc, nil), repo, boardRepo, mailSvc
}

// dobForAge returns a date of birth that makes a student exactly `age`
// years old today.
func dobForAge(age int) string {
	return time.Now().AddDate(-age, 0, 0).Format("2006-01-02")
}

func validNewStudent() NewStudent {
	return NewStudent{
		FirstName:     "alice",
		Surname:       "MWANGI",
		DOB:           dobForAge(17),
		Gender:        "F",
		YearGroup:     12,
		Mastery:       "b",
		Email:         "Alice.Mwangi@school.test",
		Subjects:      []string{SubjectMathematics, SubjectScience, SubjectComputing, SubjectEnglish},
		GuardianName:  "grace mwangi",
		GuardianPhone: "+254700000000",
	}
}

func TestNewStudentValidate(t *testing.T) {
	svc, _, _, _ := newTestService()

	t.Run("cleans and passes", func(t *testing.T) {
		ns := validNewStudent()
		require.NoError(t, ns.Validate(svc))
		assert.Equal(t, "Alice", ns.FirstName)
		assert.Equal(t, "Mwangi", ns.Surname)
		assert.Equal(t, "B", ns.Mastery)
		assert.Equal(t, "alice.mwangi@school.test", ns.Email)
		assert.Equal(t, "Grace Mwangi", ns.GuardianName)
	})

	t.Run("missing required fields", func(t *testing.T) {
		ns := NewStudent{}
		assert.Error(t, ns.Validate(svc))
	})

	t.Run("duplicate subjects", func(t *testing.T) {
		ns := validNewStudent()
		ns.Subjects = []string{SubjectMathematics, SubjectMathematics, SubjectComputing, SubjectEnglish}
		assert.Error(t, ns.Validate(svc))
	})

	t.Run("unknown subject", func(t *testing.T) {
		ns := validNewStudent()
		ns.Subjects = []string{SubjectMathematics, SubjectScience, SubjectComputing, "Art"}
		assert.Error(t, ns.Validate(svc))
	})

	t.Run("three subjects only", func(t *testing.T) {
		ns := validNewStudent()
		ns.Subjects = ns.Subjects[:3]
		assert.Error(t, ns.Validate(svc))
	})

	t.Run("malformed dob", func(t *testing.T) {
		ns := validNewStudent()
		ns.DOB = "17/05/2009"
		err := ns.Validate(svc)
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "dob", vErr.Fields[0].Field)
	})
}

func TestAgeValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	tests := []struct {
		yearGroup int
		age       int
		wantErr   bool
	}{
		{12, 15, true},
		{12, 16, false},
		{12, 18, false},
		{12, 19, true},
		{13, 16, true},
		{13, 17, false},
		{13, 19, false},
		{13, 20, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("Y%d age %d", tt.yearGroup, tt.age), func(t *testing.T) {
			ns := validNewStudent()
			ns.YearGroup = tt.yearGroup
			ns.DOB = dobForAge(tt.age)
			err := ns.Validate(svc)
			if tt.wantErr {
				var vErr *core.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "dob", vErr.Fields[0].Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterInitializesTimetable(t *testing.T) {
	svc, repo, _, _ := newTestService()

	ns := validNewStudent()
	require.NoError(t, ns.Validate(svc))
	st, err := svc.Register(ns)
	require.NoError(t, err)
	require.NotZero(t, st.ID)

	days, err := svc.Timetable(st.ID)
	require.NoError(t, err)
	require.Len(t, days, 5)
	for _, day := range days {
		assert.Equal(t, st.Mastery, day.Periods[0])
		assert.Equal(t, st.Mastery, day.Periods[4])
		for p := 1; p < 8; p++ {
			if p == 4 {
				continue
			}
			assert.Equal(t, FreePeriod, day.Periods[p])
		}
	}
	assert.Len(t, repo.students, 1)
}

func TestUniqueEmail(t *testing.T) {
	svc, _, _, _ := newTestService()

	ns := validNewStudent()
	require.NoError(t, ns.Validate(svc))
	_, err := svc.Register(ns)
	require.NoError(t, err)

	dup := validNewStudent()
	err = dup.Validate(svc)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Fields[0].Field)
}

func TestSetTimetable(t *testing.T) {
	svc, _, _, _ := newTestService()

	ns := validNewStudent()
	require.NoError(t, ns.Validate(svc))
	st, err := svc.Register(ns)
	require.NoError(t, err)

	days := NewTimetable(st.Mastery)
	days[0].Periods[1] = SubjectMathematics
	require.NoError(t, svc.SetTimetable(st.ID, days))

	t.Run("rejects subject the student does not take", func(t *testing.T) {
		days[0].Periods[2] = SubjectHistory // not one of Alice's four
		err := svc.SetTimetable(st.ID, days)
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("mastery slots are pinned", func(t *testing.T) {
		days := NewTimetable(st.Mastery)
		days[0].Periods[0] = SubjectMathematics
		require.NoError(t, svc.SetTimetable(st.ID, days))
		saved, err := svc.Timetable(st.ID)
		require.NoError(t, err)
		assert.Equal(t, st.Mastery, saved[0].Periods[0])
	})
}

func TestFlag(t *testing.T) {
	svc, _, boardRepo, mailSvc := newTestService()

	ns := validNewStudent()
	require.NoError(t, ns.Validate(svc))
	st, err := svc.Register(ns)
	require.NoError(t, err)

	post, err := svc.Flag(st.ID, 7, SubjectScience, "science-dept@school.test")
	require.NoError(t, err)
	assert.Equal(t, SubjectScience, post.Board)
	assert.Equal(t, "Alice Mwangi flagged for help in Science", post.Content)
	assert.Equal(t, 7, post.AuthorID)

	require.Len(t, boardRepo.posts, 1)
	require.Len(t, mailSvc.sent, 1)
	assert.Equal(t, "science-dept@school.test", mailSvc.sent[0].To[0].Address)
	assert.Equal(t, post.Content, mailSvc.sent[0].Body)

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.Flag(999, 7, SubjectScience, "")
		assert.Equal(t, ErrNotFound, err)
	})
}

func TestUpdate(t *testing.T) {
	svc, _, _, _ := newTestService()

	ns := validNewStudent()
	require.NoError(t, ns.Validate(svc))
	st, err := svc.Register(ns)
	require.NoError(t, err)

	us := UpdateStudent{Surname: "otieno", Mastery: "c"}
	require.NoError(t, us.Validate(st, svc))
	updated, err := svc.Update(st.ID, us)
	require.NoError(t, err)
	assert.Equal(t, "Otieno", updated.Surname)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "C", updated.Mastery)
	assert.Equal(t, st.Email, updated.Email)
}

func TestRegistrationFromValues(t *testing.T) {
	def := RegistrationDefinition()
	require.Len(t, def.Steps, 4)

	ns := RegistrationFromValues(map[string]string{
		"first_name": "Alice",
		"surname":    "Mwangi",
		"dob":        "2009-05-17",
		"gender":     "F",
		"year_group": "12",
		"mastery":    "B",
		"email":      "alice@school.test",
		"subject1":   SubjectMathematics,
		"subject2":   SubjectScience,
		"subject3":   SubjectComputing,
		"subject4":   SubjectEnglish,
	})
	assert.Equal(t, 12, ns.YearGroup)
	assert.Equal(t, []string{SubjectMathematics, SubjectScience, SubjectComputing, SubjectEnglish}, ns.Subjects)
}
