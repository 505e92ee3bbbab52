package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/classhub/internal/domain/instructor"
	"github.com/geocoder89/classhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type fakeUsersRepo struct {
	getByEmailFn     func(ctx context.Context, email string) (user.User, error)
	createIfAbsentFn func(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	listFn           func(ctx context.Context) ([]user.User, error)
	updateRoleFn     func(ctx context.Context, id string, role user.Role) (user.User, error)
	hasRoleFn        func(ctx context.Context, email string, role user.Role) (bool, error)
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeUsersRepo) CreateIfAbsent(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	return f.createIfAbsentFn(ctx, req)
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]user.User, error) {
	return f.listFn(ctx)
}

func (f *fakeUsersRepo) UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error) {
	return f.updateRoleFn(ctx, id, role)
}

func (f *fakeUsersRepo) HasRole(ctx context.Context, email string, role user.Role) (bool, error) {
	return f.hasRoleFn(ctx, email, role)
}

type fakeInstructorsDirectory struct {
	upserted []instructor.Instructor
	err      error
}

func (f *fakeInstructorsDirectory) Upsert(ctx context.Context, ins instructor.Instructor) error {
	f.upserted = append(f.upserted, ins)
	return f.err
}

func usersTestRouter(f *fakeUsersRepo, dir *fakeInstructorsDirectory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewUsersHandler(f, dir)

	r.POST("/users", h.Register)
	r.GET("/users/admin/:email", h.IsAdmin)
	r.PATCH("/users/admin/:id", h.UpdateRole)

	return r
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(f *fakeUsersRepo)
		wantStatus int
		wantBody   func(t *testing.T, body map[string]any)
	}{
		{
			name: "new_user_created",
			body: `{"email":"s@x.com","name":"Student"}`,
			setup: func(f *fakeUsersRepo) {
				f.createIfAbsentFn = func(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
					return user.User{ID: "u-1", Email: req.Email, Name: req.Name, Role: user.RoleNone}, nil
				}
			},
			wantStatus: http.StatusCreated,
			wantBody: func(t *testing.T, body map[string]any) {
				if body["insertedId"] != "u-1" {
					t.Fatalf("insertedId = %v", body["insertedId"])
				}
			},
		},
		{
			name: "existing_email_is_not_an_error",
			body: `{"email":"s@x.com","name":"Student"}`,
			setup: func(f *fakeUsersRepo) {
				f.createIfAbsentFn = func(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
					return user.User{}, user.ErrAlreadyExists
				}
			},
			wantStatus: http.StatusOK,
			wantBody: func(t *testing.T, body map[string]any) {
				if body["message"] != "user already exists" {
					t.Fatalf("message = %v", body["message"])
				}
				if body["insertedId"] != nil {
					t.Fatalf("insertedId = %v, want null", body["insertedId"])
				}
			},
		},
		{
			name:       "invalid_email_400",
			body:       `{"email":"not-an-email","name":"Student"}`,
			setup:      func(f *fakeUsersRepo) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing_name_400",
			body:       `{"email":"s@x.com"}`,
			setup:      func(f *fakeUsersRepo) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeUsersRepo{}
			tc.setup(f)

			r := usersTestRouter(f, &fakeInstructorsDirectory{})

			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.wantStatus, w.Body.String())
			}

			if tc.wantBody != nil {
				var body map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				tc.wantBody(t, body)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	f := &fakeUsersRepo{
		hasRoleFn: func(ctx context.Context, email string, role user.Role) (bool, error) {
			return email == "boss@x.com" && role == user.RoleAdmin, nil
		},
	}

	r := usersTestRouter(f, &fakeInstructorsDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/users/admin/boss@x.com", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !body["admin"] {
		t.Fatal("expected admin=true")
	}
}

func TestUpdateRole(t *testing.T) {
	const validID = "8d4c7d07-6f0e-4f53-9d57-1f2b7f9b7e31"

	tests := []struct {
		name       string
		id         string
		body       string
		updateErr  error
		wantStatus int
	}{
		{"promote_ok", validID, `{"role":"instructor"}`, nil, http.StatusOK},
		{"invalid_role_400", validID, `{"role":"superuser"}`, nil, http.StatusBadRequest},
		{"bad_id_400", "not-a-uuid", `{"role":"admin"}`, nil, http.StatusBadRequest},
		{"unknown_user_404", validID, `{"role":"admin"}`, user.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeUsersRepo{
				updateRoleFn: func(ctx context.Context, id string, role user.Role) (user.User, error) {
					if tc.updateErr != nil {
						return user.User{}, tc.updateErr
					}
					return user.User{ID: id, Email: "u@x.com", Name: "U", Role: role}, nil
				},
			}

			r := usersTestRouter(f, &fakeInstructorsDirectory{})

			req := httptest.NewRequest(http.MethodPatch, "/users/admin/"+tc.id, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

// Promoting to instructor must land the user in the public instructor
// directory; other role changes must not touch it.
func TestUpdateRole_DirectorySync(t *testing.T) {
	const validID = "8d4c7d07-6f0e-4f53-9d57-1f2b7f9b7e31"

	tests := []struct {
		name        string
		role        string
		wantUpserts int
	}{
		{"instructor_promotion_syncs", "instructor", 1},
		{"admin_promotion_does_not", "admin", 0},
		{"demotion_does_not", "none", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeUsersRepo{
				updateRoleFn: func(ctx context.Context, id string, role user.Role) (user.User, error) {
					return user.User{ID: id, Email: "ida@x.com", Name: "Ida", Role: role}, nil
				},
			}

			dir := &fakeInstructorsDirectory{}

			r := usersTestRouter(f, dir)

			req := httptest.NewRequest(http.MethodPatch, "/users/admin/"+validID,
				bytes.NewBufferString(`{"role":"`+tc.role+`"}`))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}

			if len(dir.upserted) != tc.wantUpserts {
				t.Fatalf("directory upserts = %d, want %d", len(dir.upserted), tc.wantUpserts)
			}

			if tc.wantUpserts == 1 {
				ins := dir.upserted[0]
				if ins.Email != "ida@x.com" || ins.ID != validID {
					t.Fatalf("upserted = %+v", ins)
				}
			}
		})
	}
}
