package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/config"
	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/identity"
	"qacart-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, token string) (*identity.Claims, error) {
	switch token {
	case "tok-user":
		return &identity.Claims{UID: "u1", Email: "sara@example.com", DisplayName: "Sara"}, nil
	case "tok-admin":
		return &identity.Claims{UID: "admin", Email: "admin@qacart.com"}, nil
	case "tok-new":
		return &identity.Claims{UID: "u-new", Email: "new@example.com"}, nil
	}
	return nil, errors.New("invalid token")
}

func (stubVerifier) VerifySession(_ context.Context, cookie string) (*identity.Claims, error) {
	if cookie == "cookie-u1" {
		return &identity.Claims{UID: "u1"}, nil
	}
	return nil, errors.New("invalid cookie")
}

type stubUserService struct {
	users map[string]*models.User
}

func (s *stubUserService) GetOrCreate(_ context.Context, userID, email, displayName, _ string) (*models.User, bool, error) {
	if u, ok := s.users[userID]; ok {
		return u, false, nil
	}
	u := &models.User{ID: userID, Email: email, DisplayName: displayName, Role: models.RoleUser, Subscription: models.FreeSubscription()}
	s.users[userID] = u
	return u, true, nil
}

func (s *stubUserService) GetByID(_ context.Context, userID string) (*models.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUserNotFound, userID)
}

type stubSessionService struct{ revoked []string }

func (s *stubSessionService) CreateSession(_ context.Context, idToken string) (string, time.Duration, error) {
	if idToken != "tok-user" {
		return "", 0, core.ErrInvalidSession
	}
	return "cookie-u1", core.SessionDuration, nil
}

func (s *stubSessionService) RevokeSession(_ context.Context, cookie string) error {
	s.revoked = append(s.revoked, cookie)
	return nil
}

type stubBillingService struct {
	checkoutErr error
	webhookErr  error
	webhooks    int
}

func (s *stubBillingService) CreateCheckoutSession(_ context.Context, _, priceID string) (*models.CheckoutSession, error) {
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return &models.CheckoutSession{ID: "cs_" + priceID, URL: "https://checkout.stripe.com/cs_" + priceID}, nil
}

func (s *stubBillingService) CreatePortalSession(_ context.Context, userID string) (string, error) {
	return "https://billing.stripe.com/" + userID, nil
}

func (s *stubBillingService) HandleStripeWebhook(_ context.Context, signature string, payload []byte) error {
	s.webhooks++
	if signature == "" || len(payload) == 0 {
		return core.ErrWebhookSignature
	}
	return s.webhookErr
}

type stubAdminService struct{}

func (stubAdminService) ListUsers(context.Context) ([]*models.User, error) { return nil, nil }
func (stubAdminService) GetUser(_ context.Context, userID string) (*models.User, error) {
	return nil, core.ErrUserNotFound
}
func (stubAdminService) DeleteUser(_ context.Context, adminID, userID string) error {
	if adminID == userID {
		return core.ErrCannotModifySelf
	}
	return nil
}
func (stubAdminService) TogglePremium(_ context.Context, adminID, userID string) (*core.GiftToggleResult, error) {
	if adminID == userID {
		return nil, core.ErrCannotModifySelf
	}
	return &core.GiftToggleResult{Action: core.GiftActionGranted, User: &models.User{ID: userID}}, nil
}

type stubProgressService struct{}

func (stubProgressService) MarkLessonComplete(_ context.Context, userID, courseID, lessonID string, totalLessons int, _ *int) (*core.ProgressUpdate, error) {
	if totalLessons <= 0 {
		return nil, core.ErrInvalidTotalLessons
	}
	return &core.ProgressUpdate{
		Progress: &models.UserProgress{UserID: userID, CourseID: courseID, CompletedLessons: []string{lessonID}},
		Message:  "ok",
	}, nil
}
func (stubProgressService) GetProgress(_ context.Context, userID, courseID string) (*models.UserProgress, error) {
	return &models.UserProgress{UserID: userID, CourseID: courseID}, nil
}
func (stubProgressService) ListProgress(context.Context, string) ([]*models.UserProgress, error) {
	return nil, nil
}

type stubCertificateService struct{}

func (stubCertificateService) IssueCertificate(context.Context, string, string, string) (*models.Certificate, error) {
	return nil, core.ErrPremiumRequired
}
func (stubCertificateService) VerifyCertificateByCode(_ context.Context, code string) (*core.CertificateVerification, error) {
	if code != "ABCD1234" {
		return nil, core.ErrCertificateNotFound
	}
	return &core.CertificateVerification{Valid: true, Certificate: &models.PublicCertificate{CertificateNumber: "QAC-2025-00001"}}, nil
}
func (stubCertificateService) ListUserCertificates(context.Context, string) ([]*models.Certificate, error) {
	return nil, nil
}
func (stubCertificateService) RevokeCertificate(_ context.Context, _, id string) (*models.Certificate, error) {
	return &models.Certificate{ID: id, Status: models.CertificateStatusRevoked}, nil
}

type stubCourseService struct{ includeDrafts []bool }

func (s *stubCourseService) ListCourses(_ context.Context, includeDrafts bool) ([]*models.Course, error) {
	s.includeDrafts = append(s.includeDrafts, includeDrafts)
	return []*models.Course{}, nil
}
func (s *stubCourseService) GetCourse(_ context.Context, courseID string, viewer *models.User) (*models.CourseDetail, error) {
	if courseID != "course-1" {
		return nil, core.ErrCourseNotFound
	}
	return &models.CourseDetail{Course: models.Course{ID: courseID}}, nil
}
func (s *stubCourseService) CreateCourse(_ context.Context, _ string, req models.CreateCourseRequest) (*models.Course, error) {
	return &models.Course{ID: "course-2", Title: req.Title}, nil
}
func (s *stubCourseService) UpdateCourse(context.Context, string, string, models.UpdateCourseRequest) (*models.Course, error) {
	return &models.Course{}, nil
}
func (s *stubCourseService) DeleteCourse(context.Context, string, string) error { return nil }
func (s *stubCourseService) CreateLesson(context.Context, string, string, models.CreateLessonRequest) (*models.Lesson, error) {
	return &models.Lesson{}, nil
}
func (s *stubCourseService) UpdateLesson(context.Context, string, string, string, models.UpdateLessonRequest) (*models.Lesson, error) {
	return &models.Lesson{}, nil
}
func (s *stubCourseService) DeleteLesson(context.Context, string, string, string) error { return nil }

type stubPlanService struct{}

func (stubPlanService) ListPlans(context.Context) ([]*models.Plan, error) { return nil, nil }
func (stubPlanService) FindByPriceID(context.Context, string) (*models.Plan, error) {
	return nil, core.ErrPlanNotFound
}
func (stubPlanService) SavePlan(_ context.Context, _, planID string, req models.SavePlanRequest) (*models.Plan, error) {
	return &models.Plan{ID: planID, Type: req.Type}, nil
}
func (stubPlanService) DeletePlan(context.Context, string, string) error { return nil }

type testServer struct {
	router   *gin.Engine
	billing  *stubBillingService
	sessions *stubSessionService
	courses  *stubCourseService
}

func newTestServer() *testServer {
	users := &stubUserService{users: map[string]*models.User{
		"u1":    {ID: "u1", Email: "sara@example.com", Role: models.RoleUser},
		"admin": {ID: "admin", Email: "admin@qacart.com", Role: models.RoleAdmin},
	}}
	ts := &testServer{
		router:   gin.New(),
		billing:  &stubBillingService{},
		sessions: &stubSessionService{},
		courses:  &stubCourseService{},
	}
	SetupRoutes(ts.router, &config.Config{ClientURL: "https://qacart.com"}, zap.NewNop(), stubVerifier{}, Services{
		Users:        users,
		Sessions:     ts.sessions,
		Billing:      ts.billing,
		Admin:        stubAdminService{},
		Progress:     stubProgressService{},
		Certificates: stubCertificateService{},
		Courses:      ts.courses,
		Plans:        stubPlanService{},
	})
	return ts
}

func (ts *testServer) do(method, path, token string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestStatusForKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: wrapped", core.ErrPlanNotFound), http.StatusBadRequest},
		{core.ErrInvalidSession, http.StatusUnauthorized},
		{core.ErrAdminOnly, http.StatusForbidden},
		{core.ErrPremiumRequired, http.StatusForbidden},
		{core.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: plan 'ghost'", core.ErrPlanMissing), http.StatusNotFound},
		{core.ErrAlreadySubscribed, http.StatusBadRequest},
		{core.ErrCheckoutFailed, http.StatusInternalServerError},
		{errors.New("firestore unavailable"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	r := gin.New()
	r.GET("/fail", func(c *gin.Context) {
		respondError(c, zap.NewNop(), errors.New("rpc error: code = Unavailable"))
	})
	r.GET("/wrapped", func(c *gin.Context) {
		respondError(c, zap.NewNop(), fmt.Errorf("%w: course with ID 'x'", core.ErrCourseNotFound))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	if rec.Code != http.StatusInternalServerError || errorMessage(t, rec) != genericErrorMessage {
		t.Fatalf("expected generic 500, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wrapped", nil))
	if rec.Code != http.StatusNotFound || errorMessage(t, rec) != core.ErrCourseNotFound.Message {
		t.Fatalf("expected localized 404 without context, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	ts := newTestServer()

	if rec := ts.do(http.MethodGet, "/health", "", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/v1/nope", "", nil, nil); rec.Code != http.StatusNotFound || errorMessage(t, rec) != routeNotFoundMessage {
		t.Fatalf("expected 404 json, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := ts.do(http.MethodDelete, "/api/v1/plans", "", nil, nil); rec.Code != http.StatusMethodNotAllowed || errorMessage(t, rec) != methodNotAllowedMessage {
		t.Fatalf("expected 405 json, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestInitializeUserProfile(t *testing.T) {
	ts := newTestServer()

	if rec := ts.do(http.MethodPost, "/api/v1/users/initialize", "", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodPost, "/api/v1/users/initialize", "tok-new", nil, nil); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for new profile, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodPost, "/api/v1/users/initialize", "tok-new", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for existing profile, got %d", rec.Code)
	}

	rec := ts.do(http.MethodGet, "/api/v1/users/me", "tok-user", nil, nil)
	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil || user.ID != "u1" {
		t.Fatalf("expected own profile, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSessionCookieLifecycle(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/v1/auth/session", "", models.CreateSessionRequest{IDToken: "tok-user"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "session" || cookies[0].Value != "cookie-u1" || !cookies[0].HttpOnly {
		t.Fatalf("expected http-only session cookie, got %+v", cookies)
	}
	if cookies[0].MaxAge != int(core.SessionDuration.Seconds()) {
		t.Fatalf("expected 5 day cookie, got max-age %d", cookies[0].MaxAge)
	}

	if rec := ts.do(http.MethodPost, "/api/v1/auth/session", "", models.CreateSessionRequest{IDToken: "bad"}, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad id token, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodPost, "/api/v1/auth/session", "", map[string]string{}, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-u1"})
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected sign-out 200, got %d", rec.Code)
	}
	if len(ts.sessions.revoked) != 1 || ts.sessions.revoked[0] != "cookie-u1" {
		t.Fatalf("expected cookie revoked, got %v", ts.sessions.revoked)
	}
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected cookie cleared, got %+v", cleared)
	}

	// The session cookie authenticates API calls too.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-u1"})
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cookie auth to work, got %d", rec.Code)
	}
}

func TestCheckoutSession(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/v1/billing/create-checkout-session", "tok-user", models.CreateCheckoutSessionRequest{PriceID: "price_m"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var session map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil || session["sessionId"] != "cs_price_m" || session["url"] == "" {
		t.Fatalf("unexpected session body %s", rec.Body.String())
	}

	ts.billing.checkoutErr = fmt.Errorf("%w: price_x", core.ErrPlanNotFound)
	rec = ts.do(http.MethodPost, "/api/v1/billing/create-checkout-session", "tok-user", models.CreateCheckoutSessionRequest{PriceID: "price_x"}, nil)
	if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != core.ErrPlanNotFound.Message {
		t.Fatalf("expected plan not found 400, got %d %s", rec.Code, rec.Body.String())
	}

	ts.billing.checkoutErr = fmt.Errorf("%w: card_declined", core.ErrCheckoutFailed)
	rec = ts.do(http.MethodPost, "/api/v1/billing/create-checkout-session", "tok-user", models.CreateCheckoutSessionRequest{PriceID: "price_m"}, nil)
	if rec.Code != http.StatusInternalServerError || errorMessage(t, rec) != core.ErrCheckoutFailed.Message {
		t.Fatalf("expected checkout failure 500, got %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodPost, "/api/v1/billing/create-portal-session", "tok-user", nil, nil)
	var portal PortalSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &portal); err != nil || portal.URL != "https://billing.stripe.com/u1" {
		t.Fatalf("unexpected portal response %d %s", rec.Code, rec.Body.String())
	}
}

func TestStripeWebhookStatus(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/v1/billing/webhooks/stripe", "", []byte(`{"id":"evt_1"}`), map[string]string{"Stripe-Signature": "t=1,v1=abc"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for accepted event, got %d", rec.Code)
	}

	rec = ts.do(http.MethodPost, "/api/v1/billing/webhooks/stripe", "", []byte(`{"id":"evt_1"}`), nil)
	if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != core.ErrWebhookSignature.Message {
		t.Fatalf("expected 400 for missing signature, got %d %s", rec.Code, rec.Body.String())
	}
	if ts.billing.webhooks != 2 {
		t.Fatalf("expected both deliveries reach the service, got %d", ts.billing.webhooks)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	ts := newTestServer()

	if rec := ts.do(http.MethodPost, "/api/v1/admin/users/u1/toggle-premium", "", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 anonymous, got %d", rec.Code)
	}
	rec := ts.do(http.MethodPost, "/api/v1/admin/users/u2/toggle-premium", "tok-user", nil, nil)
	if rec.Code != http.StatusForbidden || errorMessage(t, rec) != core.ErrAdminOnly.Message {
		t.Fatalf("expected 403 for non-admin, got %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodPost, "/api/v1/admin/users/u1/toggle-premium", "tok-admin", nil, nil)
	var result core.GiftToggleResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil || rec.Code != http.StatusOK || result.Action != core.GiftActionGranted {
		t.Fatalf("expected grant, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := ts.do(http.MethodPost, "/api/v1/admin/users/admin/toggle-premium", "tok-admin", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 toggling self, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodDelete, "/api/v1/admin/users/u1", "tok-admin", nil, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/v1/admin/users/ghost", "tok-admin", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/v1/admin/users", "tok-admin", nil, nil); rec.Code != http.StatusOK || rec.Body.String() != "[]" {
		t.Fatalf("expected empty list, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestProgressAndCertificates(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/v1/progress/complete", "tok-user", models.MarkLessonCompleteRequest{CourseID: "c1", LessonID: "l1", TotalLessons: 3}, nil)
	var update core.ProgressUpdate
	if err := json.Unmarshal(rec.Body.Bytes(), &update); err != nil || rec.Code != http.StatusOK || update.Progress.CourseID != "c1" {
		t.Fatalf("unexpected progress response %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodPost, "/api/v1/progress/complete", "tok-user", models.MarkLessonCompleteRequest{CourseID: "c1", LessonID: "l1"}, nil)
	if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != core.ErrInvalidTotalLessons.Message {
		t.Fatalf("expected total lessons validation, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := ts.do(http.MethodPost, "/api/v1/progress/complete", "tok-user", map[string]string{"courseId": "c1"}, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing lessonId, got %d", rec.Code)
	}

	rec = ts.do(http.MethodPost, "/api/v1/certificates", "tok-user", models.IssueCertificateRequest{CourseID: "c1", StudentName: "Sara"}, nil)
	if rec.Code != http.StatusForbidden || errorMessage(t, rec) != core.ErrPremiumRequired.Message {
		t.Fatalf("expected 403 premium required, got %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodGet, "/api/v1/certificates/verify/ABCD1234", "", nil, nil)
	var verification core.CertificateVerification
	if err := json.Unmarshal(rec.Body.Bytes(), &verification); err != nil || !verification.Valid || verification.Certificate.CertificateNumber != "QAC-2025-00001" {
		t.Fatalf("unexpected verification %d %s", rec.Code, rec.Body.String())
	}
	if rec := ts.do(http.MethodGet, "/api/v1/certificates/verify/NOPE0000", "", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/v1/certificates", "tok-user", nil, nil); rec.Body.String() != "[]" {
		t.Fatalf("expected empty certificate list, got %s", rec.Body.String())
	}
}

func TestCoursesUseOptionalAuth(t *testing.T) {
	ts := newTestServer()

	if rec := ts.do(http.MethodGet, "/api/v1/courses", "", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected anonymous listing, got %d", rec.Code)
	}
	ts.do(http.MethodGet, "/api/v1/courses", "tok-admin", nil, nil)
	if len(ts.courses.includeDrafts) != 2 || ts.courses.includeDrafts[0] || !ts.courses.includeDrafts[1] {
		t.Fatalf("expected drafts only for admin, got %v", ts.courses.includeDrafts)
	}

	if rec := ts.do(http.MethodGet, "/api/v1/courses/course-1", "tok-user", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected course detail, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/v1/courses/missing", "", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec := ts.do(http.MethodPost, "/api/v1/admin/courses", "tok-admin", models.CreateCourseRequest{Title: "أساسيات الاختبار"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := ts.do(http.MethodPut, "/api/v1/admin/plans/monthly", "tok-admin", models.SavePlanRequest{Name: "شهري", Type: "monthly", StripePriceID: "price_m"}, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected plan saved, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/v1/plans", "", nil, nil); rec.Body.String() != "[]" {
		t.Fatalf("expected empty plans list, got %s", rec.Body.String())
	}
}
