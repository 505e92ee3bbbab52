package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authpkg "github.com/geocoder89/classhub/internal/auth"
	"github.com/geocoder89/classhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type fakeVerifier struct {
	verifyFn func(token string) (*authpkg.Claims, error)
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*authpkg.Claims, error) {
	return f.verifyFn(token)
}

type fakeResolver struct {
	getFn func(ctx context.Context, email string) (user.User, error)
}

func (f *fakeResolver) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return f.getFn(ctx, email)
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handlers := append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestRequireAuth_StatusMapping(t *testing.T) {
	validClaims := &authpkg.Claims{Email: "s@x.com"}

	tests := []struct {
		name       string
		authHeader string
		verifyFn   func(string) (*authpkg.Claims, error)
		wantStatus int
	}{
		{
			name:       "missing_header_401",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non_bearer_header_401",
			authHeader: "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid_token_403",
			authHeader: "Bearer bad",
			verifyFn: func(string) (*authpkg.Claims, error) {
				return nil, authpkg.ErrInvalidToken
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "expired_token_403",
			authHeader: "Bearer old",
			verifyFn: func(string) (*authpkg.Claims, error) {
				return nil, authpkg.ErrExpiredToken
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "valid_token_200",
			authHeader: "Bearer good",
			verifyFn: func(string) (*authpkg.Claims, error) {
				return validClaims, nil
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verifier := &fakeVerifier{verifyFn: tc.verifyFn}

			if verifier.verifyFn == nil {
				verifier.verifyFn = func(string) (*authpkg.Claims, error) {
					t.Fatal("verifier should not be called")
					return nil, nil
				}
			}

			mw := NewAuthMiddleware(verifier)
			r := newTestRouter(mw.RequireAuth())

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)

			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestRequireAuth_RealManagerExpiry(t *testing.T) {
	issuer := authpkg.NewManager("test-secret", -time.Minute)

	token, err := issuer.GenerateAccessToken("s@x.com")

	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	mw := NewAuthMiddleware(authpkg.NewManager("test-secret", time.Hour))
	r := newTestRouter(mw.RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	verifier := &fakeVerifier{verifyFn: func(string) (*authpkg.Claims, error) {
		return &authpkg.Claims{Email: "i@x.com"}, nil
	}}
	mw := NewAuthMiddleware(verifier)

	tests := []struct {
		name       string
		role       user.Role
		resolveErr error
		required   user.Role
		wantStatus int
	}{
		{
			name:       "matching_role_passes",
			role:       user.RoleInstructor,
			required:   user.RoleInstructor,
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong_role_403",
			role:       user.RoleNone,
			required:   user.RoleAdmin,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown_user_403",
			resolveErr: user.ErrNotFound,
			required:   user.RoleAdmin,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &fakeResolver{getFn: func(ctx context.Context, email string) (user.User, error) {
				if tc.resolveErr != nil {
					return user.User{}, tc.resolveErr
				}
				return user.User{Email: email, Role: tc.role}, nil
			}}

			r := newTestRouter(mw.RequireAuth(), mw.RequireRole(resolver, tc.required))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer any")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

// Roles come from the store, not the token: a token for a demoted admin must
// stop working on admin routes immediately.
func TestRequireRole_DemotionTakesEffect(t *testing.T) {
	verifier := &fakeVerifier{verifyFn: func(string) (*authpkg.Claims, error) {
		return &authpkg.Claims{Email: "a@x.com"}, nil
	}}
	mw := NewAuthMiddleware(verifier)

	role := user.RoleAdmin

	resolver := &fakeResolver{getFn: func(ctx context.Context, email string) (user.User, error) {
		return user.User{Email: email, Role: role}, nil
	}}

	r := newTestRouter(mw.RequireAuth(), mw.RequireRole(resolver, user.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer any")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status before demotion = %d, want 200", w.Code)
	}

	role = user.RoleNone

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status after demotion = %d, want 403", w.Code)
	}
}

func TestRequireSelfQuery(t *testing.T) {
	verifier := &fakeVerifier{verifyFn: func(string) (*authpkg.Claims, error) {
		return &authpkg.Claims{Email: "s@x.com"}, nil
	}}
	mw := NewAuthMiddleware(verifier)

	r := newTestRouter(mw.RequireAuth(), RequireSelfQuery("email"))

	tests := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{"own_email_passes", "/protected?email=s@x.com", http.StatusOK},
		{"case_insensitive", "/protected?email=S@X.COM", http.StatusOK},
		{"other_email_403", "/protected?email=other@x.com", http.StatusForbidden},
		{"missing_email_403", "/protected", http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			req.Header.Set("Authorization", "Bearer any")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}
