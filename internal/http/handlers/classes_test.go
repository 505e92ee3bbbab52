package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/classhub/internal/cache"
	"github.com/geocoder89/classhub/internal/domain/class"
	"github.com/gin-gonic/gin"
)

type fakeClassesRepo struct {
	createFn           func(ctx context.Context, req class.CreateClassRequest) (class.Class, error)
	upsertFn           func(ctx context.Context, id string, req class.UpsertClassRequest) (class.Class, error)
	getByIDFn          func(ctx context.Context, id string) (class.Class, error)
	listApprovedFn     func(ctx context.Context) ([]class.Class, error)
	listManagedFn      func(ctx context.Context, filter class.ListFilter) ([]class.Class, error)
	listByInstructorFn func(ctx context.Context, email string) ([]class.Class, error)
	listPopularFn      func(ctx context.Context) ([]class.Summary, error)
	setStatusFn        func(ctx context.Context, id string, status class.Status) error
	setFeedbackFn      func(ctx context.Context, id string, message string) error
}

func (f *fakeClassesRepo) Create(ctx context.Context, req class.CreateClassRequest) (class.Class, error) {
	return f.createFn(ctx, req)
}

func (f *fakeClassesRepo) Upsert(ctx context.Context, id string, req class.UpsertClassRequest) (class.Class, error) {
	return f.upsertFn(ctx, id, req)
}

func (f *fakeClassesRepo) GetByID(ctx context.Context, id string) (class.Class, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeClassesRepo) ListApproved(ctx context.Context) ([]class.Class, error) {
	return f.listApprovedFn(ctx)
}

func (f *fakeClassesRepo) ListManaged(ctx context.Context, filter class.ListFilter) ([]class.Class, error) {
	return f.listManagedFn(ctx, filter)
}

func (f *fakeClassesRepo) ListByInstructor(ctx context.Context, email string) ([]class.Class, error) {
	return f.listByInstructorFn(ctx, email)
}

func (f *fakeClassesRepo) ListPopular(ctx context.Context) ([]class.Summary, error) {
	return f.listPopularFn(ctx)
}

func (f *fakeClassesRepo) SetStatus(ctx context.Context, id string, status class.Status) error {
	return f.setStatusFn(ctx, id, status)
}

func (f *fakeClassesRepo) SetFeedback(ctx context.Context, id string, message string) error {
	return f.setFeedbackFn(ctx, id, message)
}

func classesTestRouter(f *fakeClassesRepo, c *cache.Cache, callerEmail string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	if callerEmail != "" {
		r.Use(func(ctx *gin.Context) {
			ctx.Set("auth.email", callerEmail)
			ctx.Next()
		})
	}

	h := NewClassesHandler(f, c)

	r.GET("/allClasses", h.ListApproved)
	r.GET("/popularClasses", h.ListPopular)
	r.POST("/allClasses", h.Create)
	r.PUT("/myClasses/:id", h.Upsert)
	r.GET("/manageAllClasses", h.ListManaged)
	r.PATCH("/manageAllClasses/:id", h.UpdateStatus)
	r.PATCH("/allClasses/:id", h.SetFeedback)

	return r
}

func TestListApproved_CacheAndETag(t *testing.T) {
	calls := 0

	f := &fakeClassesRepo{
		listApprovedFn: func(ctx context.Context) ([]class.Class, error) {
			calls++
			return []class.Class{{ID: "c-1", Name: "Go Basics", Status: class.StatusApproved}}, nil
		},
	}

	r := classesTestRouter(f, cache.New(time.Minute), "")

	req1 := httptest.NewRequest(http.MethodGet, "/allClasses", nil)
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, req1)

	if w1.Code != http.StatusOK {
		t.Fatalf("status = %d", w1.Code)
	}

	etag := w1.Header().Get("ETag")

	if etag == "" {
		t.Fatal("expected an ETag")
	}

	// second hit is served from cache, conditional request gets 304
	req2 := httptest.NewRequest(http.MethodGet, "/allClasses", nil)
	req2.Header.Set("If-None-Match", etag)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", w2.Code)
	}

	if calls != 1 {
		t.Fatalf("repo calls = %d, want 1", calls)
	}
}

func TestCreateClass(t *testing.T) {
	validBody := `{
		"name":"Advanced Pottery",
		"instructorName":"Ida",
		"instructorEmail":"ida@x.com",
		"price":95.5,
		"availableSeats":20
	}`

	tests := []struct {
		name       string
		caller     string
		body       string
		wantStatus int
	}{
		{"own_email_created", "ida@x.com", validBody, http.StatusCreated},
		{"someone_elses_email_403", "other@x.com", validBody, http.StatusForbidden},
		{"missing_price_400", "ida@x.com", `{"name":"X","instructorName":"Ida","instructorEmail":"ida@x.com","availableSeats":5}`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeClassesRepo{
				createFn: func(ctx context.Context, req class.CreateClassRequest) (class.Class, error) {
					c := class.NewFromCreateRequest(req)
					return c, nil
				},
			}

			r := classesTestRouter(f, nil, tc.caller)

			req := httptest.NewRequest(http.MethodPost, "/allClasses", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestUpsertClass_OwnershipGuard(t *testing.T) {
	const id = "0c2dd2cb-0c22-4a0a-86b1-8a3190e84a5e"

	body := `{
		"name":"Advanced Pottery",
		"instructorName":"Ida",
		"instructorEmail":"ida@x.com",
		"price":95.5,
		"availableSeats":20
	}`

	tests := []struct {
		name       string
		existing   class.Class
		getErr     error
		wantStatus int
	}{
		{
			name:       "own_class_updated",
			existing:   class.Class{ID: id, InstructorEmail: "ida@x.com"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "absent_class_inserted",
			getErr:     class.ErrNotFound,
			wantStatus: http.StatusOK,
		},
		{
			name:       "foreign_class_403",
			existing:   class.Class{ID: id, InstructorEmail: "rival@x.com"},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeClassesRepo{
				getByIDFn: func(ctx context.Context, gid string) (class.Class, error) {
					if tc.getErr != nil {
						return class.Class{}, tc.getErr
					}
					return tc.existing, nil
				},
				upsertFn: func(ctx context.Context, uid string, req class.UpsertClassRequest) (class.Class, error) {
					return class.Class{ID: uid}, nil
				},
			}

			r := classesTestRouter(f, nil, "ida@x.com")

			req := httptest.NewRequest(http.MethodPut, "/myClasses/"+id, bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

// Setting availableSeats to 0 marks a class sold out; the binding rules must
// not confuse the zero value with an absent field.
func TestUpsertClass_ZeroSeatsAccepted(t *testing.T) {
	const id = "0c2dd2cb-0c22-4a0a-86b1-8a3190e84a5e"

	var gotSeats = -1

	f := &fakeClassesRepo{
		getByIDFn: func(ctx context.Context, gid string) (class.Class, error) {
			return class.Class{ID: id, InstructorEmail: "ida@x.com"}, nil
		},
		upsertFn: func(ctx context.Context, uid string, req class.UpsertClassRequest) (class.Class, error) {
			gotSeats = req.AvailableSeats
			return class.Class{ID: uid}, nil
		},
	}

	r := classesTestRouter(f, nil, "ida@x.com")

	body := `{
		"name":"Advanced Pottery",
		"instructorName":"Ida",
		"instructorEmail":"ida@x.com",
		"price":95.5,
		"availableSeats":0
	}`

	req := httptest.NewRequest(http.MethodPut, "/myClasses/"+id, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	if gotSeats != 0 {
		t.Fatalf("availableSeats = %d, want 0", gotSeats)
	}
}

func TestListManaged_Filters(t *testing.T) {
	var gotFilter class.ListFilter

	f := &fakeClassesRepo{
		listManagedFn: func(ctx context.Context, filter class.ListFilter) ([]class.Class, error) {
			gotFilter = filter
			return []class.Class{}, nil
		},
	}

	r := classesTestRouter(f, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/manageAllClasses?status=pending&email=ida@x.com", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if gotFilter.Status == nil || *gotFilter.Status != class.StatusPending {
		t.Fatalf("status filter = %v", gotFilter.Status)
	}

	if gotFilter.InstructorEmail == nil || *gotFilter.InstructorEmail != "ida@x.com" {
		t.Fatalf("email filter = %v", gotFilter.InstructorEmail)
	}

	// bogus status filter is rejected, not passed through
	req = httptest.NewRequest(http.MethodGet, "/manageAllClasses?status=wild", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	const id = "0c2dd2cb-0c22-4a0a-86b1-8a3190e84a5e"

	tests := []struct {
		name       string
		body       string
		setErr     error
		wantStatus int
	}{
		{"approve", `{"status":"approved"}`, nil, http.StatusOK},
		{"reset_to_pending", `{"status":"pending"}`, nil, http.StatusOK},
		{"invalid_status_400", `{"status":"maybe"}`, nil, http.StatusBadRequest},
		{"unknown_class_404", `{"status":"denied"}`, class.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeClassesRepo{
				setStatusFn: func(ctx context.Context, sid string, status class.Status) error {
					return tc.setErr
				},
			}

			r := classesTestRouter(f, nil, "")

			req := httptest.NewRequest(http.MethodPatch, "/manageAllClasses/"+id, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSetFeedback(t *testing.T) {
	const id = "0c2dd2cb-0c22-4a0a-86b1-8a3190e84a5e"

	var gotMessage string

	f := &fakeClassesRepo{
		setFeedbackFn: func(ctx context.Context, fid string, message string) error {
			gotMessage = message
			return nil
		},
	}

	r := classesTestRouter(f, nil, "")

	req := httptest.NewRequest(http.MethodPatch, "/allClasses/"+id, bytes.NewBufferString(`{"message":"please add prerequisites"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	if gotMessage != "please add prerequisites" {
		t.Fatalf("message = %q", gotMessage)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if body["modifiedCount"] != float64(1) {
		t.Fatalf("modifiedCount = %v", body["modifiedCount"])
	}
}
