package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Subscription = copySubscription(u.Subscription)
	return &c
}

func copySubscription(s models.Subscription) models.Subscription {
	c := s
	if s.GiftDetails != nil {
		g := *s.GiftDetails
		c.GiftDetails = &g
	}
	if s.CurrentPeriodEnd != nil {
		t := *s.CurrentPeriodEnd
		c.CurrentPeriodEnd = &t
	}
	if s.NextBillingDate != nil {
		t := *s.NextBillingDate
		c.NextBillingDate = &t
	}
	return c
}

// fakeUserRepo is an in-memory db.UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*models.User
	writes  int
	failGet error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = copyUser(u)
	}
	return r
}

func (r *fakeUserRepo) get(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	return copyUser(u)
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	if u := r.get(userID); u != nil {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", userID, db.ErrNotFound)
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return errors.New("already exists")
	}
	r.users[user.ID] = copyUser(user)
	r.writes++
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	r.writes++
	return nil
}

func (r *fakeUserRepo) FindByStripeCustomerID(_ context.Context, customerID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if customerID != "" && u.StripeCustomerID == customerID {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("customer %s: %w", customerID, db.ErrNotFound)
}

func (r *fakeUserRepo) SetStripeCustomerID(_ context.Context, userID, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.StripeCustomerID = customerID
	r.writes++
	return nil
}

func (r *fakeUserRepo) ReplaceSubscription(_ context.Context, userID string, sub models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.Subscription = copySubscription(sub)
	r.writes++
	return nil
}

func (r *fakeUserRepo) PatchSubscription(_ context.Context, userID string, patch models.SubscriptionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	patch.ApplyTo(&u.Subscription)
	r.writes++
	return nil
}

func (r *fakeUserRepo) ListWithExpiredGifts(_ context.Context, now time.Time) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.Subscription.GiftExpired(now) {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

// fakeProgressRepo is an in-memory db.ProgressRepository.
type fakeProgressRepo struct {
	records map[string]*models.UserProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: map[string]*models.UserProgress{}}
}

func copyProgress(p *models.UserProgress) *models.UserProgress {
	c := *p
	c.CompletedLessons = append([]string(nil), p.CompletedLessons...)
	c.LessonProgress = make(map[string]models.LessonProgress, len(p.LessonProgress))
	for k, v := range p.LessonProgress {
		c.LessonProgress[k] = v
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func (r *fakeProgressRepo) Get(_ context.Context, userID, courseID string) (*models.UserProgress, error) {
	p, ok := r.records[models.ProgressDocID(userID, courseID)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return copyProgress(p), nil
}

func (r *fakeProgressRepo) Save(_ context.Context, progress *models.UserProgress) error {
	progress.ID = models.ProgressDocID(progress.UserID, progress.CourseID)
	r.records[progress.ID] = copyProgress(progress)
	return nil
}

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID string) ([]*models.UserProgress, error) {
	var out []*models.UserProgress
	for _, p := range r.records {
		if p.UserID == userID {
			out = append(out, copyProgress(p))
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, p := range r.records {
		if p.UserID == userID {
			delete(r.records, id)
		}
	}
	return nil
}

// fakeCertificateRepo is an in-memory db.CertificateRepository.
type fakeCertificateRepo struct {
	certs map[string]*models.Certificate
}

func newFakeCertificateRepo() *fakeCertificateRepo {
	return &fakeCertificateRepo{certs: map[string]*models.Certificate{}}
}

func (r *fakeCertificateRepo) Create(_ context.Context, cert *models.Certificate) error {
	if _, ok := r.certs[cert.ID]; ok {
		return errors.New("already exists")
	}
	c := *cert
	r.certs[cert.ID] = &c
	return nil
}

func (r *fakeCertificateRepo) GetByID(_ context.Context, id string) (*models.Certificate, error) {
	c, ok := r.certs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *fakeCertificateRepo) GetByVerificationCode(_ context.Context, code string) (*models.Certificate, error) {
	for _, c := range r.certs {
		if c.VerificationCode == code {
			cc := *c
			return &cc, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeCertificateRepo) ListByUserAndCourse(_ context.Context, userID, courseID string) ([]*models.Certificate, error) {
	var out []*models.Certificate
	for _, c := range r.certs {
		if c.UserID == userID && c.CourseID == courseID {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}

func (r *fakeCertificateRepo) ListByUser(_ context.Context, userID string) ([]*models.Certificate, error) {
	var out []*models.Certificate
	for _, c := range r.certs {
		if c.UserID == userID {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}

func (r *fakeCertificateRepo) CountIssuedBetween(_ context.Context, from, to time.Time) (int, error) {
	n := 0
	for _, c := range r.certs {
		if !c.IssuedAt.Before(from) && c.IssuedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *fakeCertificateRepo) UpdateStatus(_ context.Context, id, status string, at time.Time) error {
	c, ok := r.certs[id]
	if !ok {
		return db.ErrNotFound
	}
	c.Status = status
	if status == models.CertificateStatusRevoked {
		t := at
		c.RevokedAt = &t
	}
	return nil
}

func (r *fakeCertificateRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, c := range r.certs {
		if c.UserID == userID {
			delete(r.certs, id)
		}
	}
	return nil
}

// fakeCourseRepo is an in-memory db.CourseRepository.
type fakeCourseRepo struct {
	courses map[string]*models.Course
	lessons map[string]map[string]*models.Lesson
	nextID  int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses: map[string]*models.Course{},
		lessons: map[string]map[string]*models.Lesson{},
	}
}

func (r *fakeCourseRepo) Create(_ context.Context, course *models.Course) (string, error) {
	if course.ID == "" {
		r.nextID++
		course.ID = fmt.Sprintf("course-%d", r.nextID)
	}
	c := *course
	r.courses[c.ID] = &c
	return c.ID, nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id string) (*models.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *fakeCourseRepo) List(_ context.Context, publishedOnly bool) ([]*models.Course, error) {
	var out []*models.Course
	for _, c := range r.courses {
		if publishedOnly && !c.IsPublished {
			continue
		}
		cc := *c
		out = append(out, &cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	c := *course
	r.courses[c.ID] = &c
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id string) error {
	delete(r.courses, id)
	delete(r.lessons, id)
	return nil
}

func (r *fakeCourseRepo) CreateLesson(_ context.Context, courseID string, lesson *models.Lesson) error {
	if r.lessons[courseID] == nil {
		r.lessons[courseID] = map[string]*models.Lesson{}
	}
	l := *lesson
	l.CourseID = courseID
	r.lessons[courseID][l.ID] = &l
	return nil
}

func (r *fakeCourseRepo) GetLesson(_ context.Context, courseID, lessonID string) (*models.Lesson, error) {
	l, ok := r.lessons[courseID][lessonID]
	if !ok {
		return nil, db.ErrNotFound
	}
	ll := *l
	return &ll, nil
}

func (r *fakeCourseRepo) ListLessons(_ context.Context, courseID string) ([]*models.Lesson, error) {
	var out []*models.Lesson
	for _, l := range r.lessons[courseID] {
		ll := *l
		out = append(out, &ll)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeCourseRepo) UpdateLesson(_ context.Context, courseID string, lesson *models.Lesson) error {
	l := *lesson
	r.lessons[courseID][l.ID] = &l
	return nil
}

func (r *fakeCourseRepo) DeleteLesson(_ context.Context, courseID, lessonID string) error {
	delete(r.lessons[courseID], lessonID)
	return nil
}

// fakePlanRepo is an in-memory db.PlanRepository.
type fakePlanRepo struct {
	plans     map[string]*models.Plan
	listCalls int
}

func newFakePlanRepo(plans ...*models.Plan) *fakePlanRepo {
	r := &fakePlanRepo{plans: map[string]*models.Plan{}}
	for _, p := range plans {
		cp := *p
		r.plans[p.ID] = &cp
	}
	return r
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]*models.Plan, error) {
	r.listCalls++
	var out []*models.Plan
	for _, p := range r.plans {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakePlanRepo) Save(_ context.Context, plan *models.Plan) error {
	cp := *plan
	r.plans[plan.ID] = &cp
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, planID string) error {
	if _, ok := r.plans[planID]; !ok {
		return db.ErrNotFound
	}
	delete(r.plans, planID)
	return nil
}

// fakePlanCache is an in-memory PlanCache.
type fakePlanCache struct {
	plans       []*models.Plan
	set         bool
	invalidated int
}

func (c *fakePlanCache) GetPlans(context.Context) ([]*models.Plan, bool, error) {
	return c.plans, c.set, nil
}

func (c *fakePlanCache) SetPlans(_ context.Context, plans []*models.Plan) error {
	c.plans, c.set = plans, true
	return nil
}

func (c *fakePlanCache) Invalidate(context.Context) error {
	c.plans, c.set = nil, false
	c.invalidated++
	return nil
}

// recordingAudit captures audit entries.
type recordingAudit struct {
	entries []models.AuditLog
}

func (a *recordingAudit) CreateAuditLog(_ context.Context, e models.AuditLog) error {
	a.entries = append(a.entries, e)
	return nil
}

func (a *recordingAudit) actions() []string {
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	keys     []string
	payloads []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload interface{}) error {
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, payload)
	return nil
}

// fakeGateway is a scripted PaymentGateway.
type fakeGateway struct {
	customers     int
	checkouts     []models.CheckoutSessionParams
	subscriptions map[string]*models.ProcessorSubscription
	events        map[string]*models.WebhookEvent // keyed by signature
	decodeErrs    map[string]error                // keyed by signature
	failCheckout  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		subscriptions: map[string]*models.ProcessorSubscription{},
		events:        map[string]*models.WebhookEvent{},
		decodeErrs:    map[string]error{},
	}
}

func (g *fakeGateway) CreateCustomer(_ context.Context, userID, _, _ string) (string, error) {
	g.customers++
	return "cus_" + userID, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, params models.CheckoutSessionParams) (*models.CheckoutSession, error) {
	if g.failCheckout != nil {
		return nil, g.failCheckout
	}
	g.checkouts = append(g.checkouts, params)
	id := fmt.Sprintf("cs_test_%d", len(g.checkouts))
	return &models.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (g *fakeGateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	return "https://billing.stripe.test/" + customerID + "?return=" + returnURL, nil
}

func (g *fakeGateway) GetSubscription(_ context.Context, id string) (*models.ProcessorSubscription, error) {
	s, ok := g.subscriptions[id]
	if !ok {
		return nil, errors.New("no such subscription")
	}
	cp := *s
	return &cp, nil
}

func (g *fakeGateway) ParseWebhookEvent(_ []byte, signature string) (*models.WebhookEvent, error) {
	e, ok := g.events[signature]
	if !ok {
		return nil, errors.New("no signatures found matching the expected signature for payload")
	}
	return e, g.decodeErrs[signature]
}

// fakeIdentity is an in-memory IdentityProvider.
type fakeIdentity struct {
	deleted []string
	revoked []string
	cookies map[string]string // cookie -> uid
}

func (f *fakeIdentity) CreateSessionCookie(_ context.Context, idToken string, _ time.Duration) (string, error) {
	if idToken == "bad" {
		return "", errors.New("invalid id token")
	}
	return "cookie-" + idToken, nil
}

func (f *fakeIdentity) VerifySessionCookie(_ context.Context, cookie string) (string, error) {
	uid, ok := f.cookies[cookie]
	if !ok {
		return "", errors.New("invalid session cookie")
	}
	return uid, nil
}

func (f *fakeIdentity) RevokeRefreshTokens(_ context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}
