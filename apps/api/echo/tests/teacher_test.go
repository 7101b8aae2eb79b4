package tests

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"

	"github.com/studsight/studsight/core/teacher"
	emailsvc "github.com/studsight/studsight/services/email"
	testutil "github.com/studsight/studsight/tests"
)

func Test_teacherApi_login(t *testing.T) {
	db.Reset()

	tchr := testutil.CreateTeacher(t, tchrRepo, "Jane", "Doe", "jane@test.cd", "Secret#123", "Science", "", teacher.RoleTeacher, true)
	_ = testutil.CreateTeacher(t, tchrRepo, "Numb", "Locked", "locked@test.cd", "Secret#123", "", "", teacher.RoleTeacher, false)

	body := func(email, pwd string) []byte {
		return []byte(fmt.Sprintf(`{"email": %q, "password": %q}`, email, pwd))
	}

	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/v1/teachers/login",
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "email is a required field", "password": "password is a required field"}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/teachers/login",
			body: body("ghost@test.cd", "Secret#123"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/teachers/login",
			body: body(tchr.Email, "nope"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", method: http.MethodPost, path: "/v1/teachers/login",
			body: body("locked@test.cd", "Secret#123"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
	}
	for _, tt := range tests {
		tt.run(t)
	}

	t.Run("valid credentials", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/teachers/login", body(tchr.Email, "Secret#123"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("login failed: code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if !regexp.MustCompile(`"token":\s*"\S+"`).Match(rec.Body.Bytes()) {
			t.Errorf("no token in response: %v", rec.Body.String())
		}

		// login records the time
		tchr, err := tchrRepo.GetTeacherByID(tchr.ID)
		if err != nil {
			t.Fatalf("GetTeacherByID(): %v", err)
		}
		if tchr.LastLogin.IsZero() {
			t.Error("LastLogin not set")
		}
	})
}

func Test_teacherApi_register(t *testing.T) {
	db.Reset()

	admin := testutil.CreateTeacher(t, tchrRepo, "Head", "Master", "head@test.cd", "", "", "", teacher.RoleAdmin, true)
	tchr := testutil.CreateTeacher(t, tchrRepo, "Jane", "Doe", "jane@test.cd", "", "Science", "", teacher.RoleTeacher, true)

	newTchr := []byte(`{
		"first_name": "john", "surname": "SMITH", "email": "John@Test.cd",
		"subject": "Computing", "mastery": "b",
		"password": "Secret#123", "password_confirm": "Secret#123"
	}`)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/teachers/register",
			body: newTchr, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken),
		},
		{
			name: "admin required", method: http.MethodPost, path: "/v1/teachers/register",
			body: newTchr, token: getToken(t, tchr), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "password mismatch", method: http.MethodPost, path: "/v1/teachers/register",
			body: []byte(`{
				"first_name": "A", "surname": "B", "email": "ab@test.cd",
				"password": "Secret#123", "password_confirm": "Secret#124"
			}`),
			token: getToken(t, admin), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
	}
	for _, tt := range tests {
		tt.run(t)
	}

	t.Run("created and normalized", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/teachers/register", getToken(t, admin), newTchr)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("register failed: code = %v; body = %v", rec.Code, rec.Body.String())
		}

		created, err := tchrSvc.GetByEmail("john@test.cd")
		if err != nil {
			t.Fatalf("GetByEmail(): %v", err)
		}
		if created.FirstName != "John" || created.Surname != "Smith" {
			t.Errorf("name not normalized: %q %q", created.FirstName, created.Surname)
		}
		if created.Mastery != "B" {
			t.Errorf("mastery not uppercased: %q", created.Mastery)
		}
		if created.Role != teacher.RoleTeacher {
			t.Errorf("role = %q; want default %q", created.Role, teacher.RoleTeacher)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/teachers/register", getToken(t, admin), newTchr)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, http.StatusBadRequest,
			marshallObj(t, map[string]string{"email": teacher.ErrEmailExists.Error()}), rec)
	})
}

func Test_teacherApi_passwordReset(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	tchr := testutil.CreateTeacher(t, tchrRepo, "Jane", "Doe", "jane@test.cd", "Secret#123", "Science", "", teacher.RoleTeacher, true)

	t.Run("request", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/teachers/password-reset", []byte(`{"email": "jane@test.cd"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request failed: code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if len(emailsvc.SentMessages) != 1 {
			t.Fatalf("sent %d emails; want 1", len(emailsvc.SentMessages))
		}
	})

	// same response for unknown emails; no mail goes out
	t.Run("unknown email", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/teachers/password-reset", []byte(`{"email": "ghost@test.cd"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request failed: code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if len(emailsvc.SentMessages) != 1 {
			t.Fatalf("sent %d emails; want 1", len(emailsvc.SentMessages))
		}
	})

	uid, token := parseResetMail(t, emailsvc.SentMessages[0].Body)

	t.Run("confirm", func(t *testing.T) {
		body := []byte(fmt.Sprintf(
			`{"uid": %q, "token": %q, "password": "NewSecret#1", "password_confirm": "NewSecret#1"}`,
			uid, token,
		))
		req, rec := newRequest(http.MethodPost, "/v1/teachers/password-reset-confirm", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("confirm failed: code = %v; body = %v", rec.Code, rec.Body.String())
		}

		if _, err := tchrSvc.Authenticate(tchr.Email, "NewSecret#1"); err != nil {
			t.Errorf("Authenticate() with new password: %v", err)
		}
	})

	// the password change invalidates the token
	t.Run("token is single-use", func(t *testing.T) {
		body := []byte(fmt.Sprintf(
			`{"uid": %q, "token": %q, "password": "Another#1xx", "password_confirm": "Another#1xx"}`,
			uid, token,
		))
		req, rec := newRequest(http.MethodPost, "/v1/teachers/password-reset-confirm", body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, http.StatusBadRequest, marshallObj(t, httpErr{Error: "invalid token"}), rec)
	})
}

func parseResetMail(t *testing.T, body string) (uid, token string) {
	t.Helper()
	m := regexp.MustCompile(`UID: (\S+)\nToken: (\S+)`).FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no reset credentials in mail body:\n%s", body)
	}
	return m[1], m[2]
}

func Test_teacherApi_destroy(t *testing.T) {
	db.Reset()

	admin := testutil.CreateTeacher(t, tchrRepo, "Head", "Master", "head@test.cd", "", "", "", teacher.RoleAdmin, true)
	admin2 := testutil.CreateTeacher(t, tchrRepo, "Vice", "Head", "vice@test.cd", "", "", "", teacher.RoleAdmin, true)
	tchr := testutil.CreateTeacher(t, tchrRepo, "Jane", "Doe", "jane@test.cd", "", "Science", "", teacher.RoleTeacher, true)

	adminToken := getToken(t, admin)
	path := func(id int) string { return fmt.Sprintf("/v1/teachers/%d", id) }

	tests := []httpTest{
		{
			name: "admin required", method: http.MethodDelete, path: path(tchr.ID),
			token: getToken(t, tchr), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "cannot delete self", method: http.MethodDelete, path: path(admin.ID),
			token: adminToken, wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "admin accounts are protected", method: http.MethodDelete, path: path(admin2.ID),
			token: adminToken, wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "deleted", method: http.MethodDelete, path: path(tchr.ID),
			token: adminToken, wantCode: http.StatusNoContent,
		},
		{
			name: "gone", path: path(tchr.ID),
			token: adminToken, wantCode: http.StatusNotFound, wantData: marshallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		tt.run(t)
	}
}
