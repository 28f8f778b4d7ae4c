package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/trezcool/registro/apps/api/echo"
	"github.com/trezcool/registro/core/user"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	student := sampleStudent(t)

	t.Run("ok", func(t *testing.T) {
		body := marchallObj(t, LoginRequest{Email: student.Email, Password: "password123"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Token == "" {
			t.Error("login must return a token")
		}
		if resp.User != student {
			t.Errorf("login user = %+v, want %+v", resp.User, student)
		}

		// a session is established
		if current, err := svcs.User.CurrentUser(); err != nil || current.ID != student.ID {
			t.Errorf("CurrentUser() = %+v, %v", current, err)
		}
	})

	tests := []httpTest{
		{
			name: "wrong password", body: marchallObj(t, LoginRequest{Email: student.Email, Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown email", body: marchallObj(t, LoginRequest{Email: "nadie@ejemplo.com", Password: "password123"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "missing fields", body: marchallObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	t.Run("ok", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{Name: "Nuevo", Email: "nuevo@ejemplo.com", Password: "claveLarga42", Role: user.RoleStudent})
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if usr.ID == "" || usr.Email != "nuevo@ejemplo.com" {
			t.Errorf("register = %+v", usr)
		}
		// the response must not leak the password hash
		var raw map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &raw)
		if _, ok := raw["passwordHash"]; ok {
			t.Error("register must not expose passwordHash")
		}
	})

	tests := []httpTest{
		{
			name: "duplicate email", body: marchallObj(t, user.NewUser{Name: "Otro", Email: "nuevo@ejemplo.com", Password: "claveLarga42", Role: user.RoleStudent}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "invalid role", body: marchallObj(t, user.NewUser{Name: "Otro", Email: "otro@ejemplo.com", Password: "claveLarga42", Role: "hacker"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "invalid role"}),
		},
		{
			name: "weak password", body: marchallObj(t, user.NewUser{Name: "Otro", Email: "otro@ejemplo.com", Password: "corta1", Role: user.RoleStudent}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieveSelf(t *testing.T) {
	app := setup(t)

	student := sampleStudent(t)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "ok", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallObj(t, student)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_logout(t *testing.T) {
	app := setup(t)

	student := sampleStudent(t)
	if _, err := svcs.User.Authenticate(student.Email, "password123"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/logout", getToken(t, student))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"success": "logged out"})}, rec)

	if _, err := svcs.User.CurrentUser(); err != user.ErrNoSession {
		t.Errorf("CurrentUser() error = %v, wantErr %v", err, user.ErrNoSession)
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, sampleStudent(t)),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Get all", path: "/v1/users", token: getToken(t, sampleAdmin(t)),
			wantCode: http.StatusOK, wantData: marchallList(t, sampleStudent(t), sampleProfessor(t), sampleAdmin(t)),
		},
		{
			name: "Roles", path: "/v1/users/roles", token: getToken(t, sampleAdmin(t)),
			wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles),
		},
		{
			name: "Roles require admin", path: "/v1/users/roles", token: getToken(t, sampleProfessor(t)),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
