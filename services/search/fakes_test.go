package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	adminRepo "linguahub/database/repository/admin"
	blockRepo "linguahub/database/repository/block"
	interpreterRepo "linguahub/database/repository/interpreter"
	orderRepo "linguahub/database/repository/order"
	"linguahub/models"

	"go.uber.org/zap"
)

var testNow = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

type sentInvitation struct {
	interpreterID string
	platformID    string
	payload       models.InvitationPayload
}

type fakeNotifier struct {
	mu          sync.Mutex
	adminAlerts []models.AdminAlert
	changes     []models.ClientChangeNotice
	invitations []sentInvitation
	failFor     map[string]bool
}

func (n *fakeNotifier) SendToAdmins(_ context.Context, _ []string, _ string, alert models.AdminAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.adminAlerts = append(n.adminAlerts, alert)
	return nil
}

func (n *fakeNotifier) SendClientChangeNotification(_ context.Context, _, _ string, notice models.ClientChangeNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, notice)
	return nil
}

func (n *fakeNotifier) SendInterpreterInvitation(_ context.Context, interpreterID, platformID string, payload models.InvitationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invitations = append(n.invitations, sentInvitation{interpreterID, platformID, payload})
	if n.failFor[interpreterID] {
		return errors.New("fcm unavailable")
	}
	return nil
}

func (n *fakeNotifier) changeReasons() []models.ChangeReason {
	n.mu.Lock()
	defer n.mu.Unlock()
	var reasons []models.ChangeReason
	for _, c := range n.changes {
		reasons = append(reasons, c.Reason)
	}
	return reasons
}

func (n *fakeNotifier) invitedIDs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var ids []string
	for _, inv := range n.invitations {
		ids = append(ids, inv.interpreterID)
	}
	return ids
}

type fakeAdmin struct {
	infos    map[string]*models.AdminInfo
	admins   []string
	redFlags []string
}

func (a *fakeAdmin) GetByAppointmentID(_ context.Context, appointmentID string) (*models.AdminInfo, error) {
	info, ok := a.infos[appointmentID]
	if !ok {
		return nil, adminRepo.ErrAdminInfoNotFound
	}
	return info, nil
}

func (a *fakeAdmin) SetRedFlag(_ context.Context, adminInfoID, message string) error {
	for _, info := range a.infos {
		if info.ID == adminInfoID {
			info.IsRedFlagEnabled = true
			info.RedFlagMessage = message
		}
	}
	a.redFlags = append(a.redFlags, message)
	return nil
}

func (a *fakeAdmin) ListAdminIDs(context.Context) ([]string, error) {
	return a.admins, nil
}

type fakeBlocks struct {
	blocks []models.UserBlock
	err    error
}

func (b *fakeBlocks) ActiveCounterparts(_ context.Context, userID string) ([]string, error) {
	if b.err != nil {
		return nil, b.err
	}
	return blockRepo.Counterparts(userID, b.blocks), nil
}

type fakeOrders struct {
	orders     map[string]*models.AppointmentOrder
	groups     map[string]*models.AppointmentOrderGroup
	orderExecs map[string][]models.SearchExecution
	groupExecs map[string][]models.SearchExecution
	failWrites error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders:     map[string]*models.AppointmentOrder{},
		groups:     map[string]*models.AppointmentOrderGroup{},
		orderExecs: map[string][]models.SearchExecution{},
		groupExecs: map[string][]models.SearchExecution{},
	}
}

func (o *fakeOrders) GetByID(_ context.Context, id string) (*models.AppointmentOrder, error) {
	order, ok := o.orders[id]
	if !ok {
		return nil, orderRepo.ErrOrderNotFound
	}
	return order, nil
}

func (o *fakeOrders) GetGroupByID(_ context.Context, id string) (*models.AppointmentOrderGroup, error) {
	group, ok := o.groups[id]
	if !ok {
		return nil, orderRepo.ErrGroupNotFound
	}
	return group, nil
}

func (o *fakeOrders) UpdateSearchExecution(_ context.Context, orderID string, exec models.SearchExecution) error {
	if o.failWrites != nil {
		return o.failWrites
	}
	o.orderExecs[orderID] = append(o.orderExecs[orderID], exec)
	return nil
}

func (o *fakeOrders) UpdateGroupSearchExecution(_ context.Context, groupID string, exec models.SearchExecution) error {
	if o.failWrites != nil {
		return o.failWrites
	}
	o.groupExecs[groupID] = append(o.groupExecs[groupID], exec)
	return nil
}

func (o *fakeOrders) FindDueSearches(context.Context, time.Time, int64) ([]orderRepo.DueSearch, error) {
	return nil, nil
}

type fakeLock struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: map[string]bool{}}
}

func (l *fakeLock) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}

type failingStore struct{}

func (failingStore) Count(context.Context, []interpreterRepo.Predicate) (int64, error) {
	return 0, errors.New("connection reset")
}

func (failingStore) DistinctIDs(context.Context, []interpreterRepo.Predicate) ([]string, error) {
	return nil, errors.New("connection reset")
}

type harness struct {
	store    *interpreterRepo.MemoryInterpreterRepo
	notifier *fakeNotifier
	admin    *fakeAdmin
	blocks   *fakeBlocks
	orders   *fakeOrders
	lock     *fakeLock
	engine   *DefaultSearchEngine
}

func newHarness(t *testing.T, interpreters ...models.Interpreter) *harness {
	t.Helper()
	logger := zap.NewNop()
	h := &harness{
		store:    interpreterRepo.NewMemoryInterpreterRepo(interpreters...),
		notifier: &fakeNotifier{failFor: map[string]bool{}},
		admin: &fakeAdmin{
			infos:  map[string]*models.AdminInfo{"appt-1": {ID: "admin-info-1", AppointmentID: "appt-1"}},
			admins: []string{"admin-1", "admin-2"},
		},
		blocks: &fakeBlocks{},
		orders: newFakeOrders(),
		lock:   newFakeLock(),
	}
	h.engine = &DefaultSearchEngine{
		Store:    h.store,
		Blocks:   h.blocks,
		Notifier: h.notifier,
		Escalation: &EscalationReporter{
			AdminInfo: h.admin,
			Admins:    h.admin,
			Notifier:  h.notifier,
			Logger:    logger,
		},
		Invitations:  NewInvitationDispatcher(h.notifier, "https://app.example.com/", 4, 0, logger),
		Results:      &ResultPersistence{Writer: h.orders, Lock: h.lock, Logger: logger},
		Logger:       logger,
		RestartDelay: 15 * time.Minute,
	}
	return h
}

// run executes a search for order with the given flags, holding its lock
// first the way the trigger does.
func (h *harness) run(t *testing.T, order *models.AppointmentOrder, redFlags, notify bool) Outcome {
	t.Helper()
	key := OrderCacheKey(order.ID)
	h.lock.held[key] = true
	outcome, err := h.engine.RunSearch(context.Background(), SearchContext{
		Target:            SingleOrder{Order: order},
		CacheKey:          key,
		SetRedFlags:       redFlags,
		SendNotifications: notify,
		Now:               testNow,
	})
	if err != nil {
		t.Fatalf("RunSearch: %v", err)
	}
	h.engine.Invitations.Wait()
	return outcome
}

func (h *harness) lastExec(orderID string) models.SearchExecution {
	execs := h.orders.orderExecs[orderID]
	if len(execs) == 0 {
		return models.SearchExecution{}
	}
	return execs[len(execs)-1]
}

func newOrder(opts ...func(*models.AppointmentOrder)) *models.AppointmentOrder {
	start := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	o := &models.AppointmentOrder{
		ID:                 "order-1",
		PlatformID:         "ORD-0001",
		AppointmentID:      "appt-1",
		ClientID:           "client-1",
		ClientPlatformID:   "CL-0001",
		ClientDisplayName:  "Jane Client",
		LanguageFrom:       "en",
		LanguageTo:         "es",
		SchedulingType:     models.SchedulingPreBooked,
		CommunicationType:  models.CommunicationVideo,
		InterpretingType:   models.InterpretingSimultaneous,
		Topic:              models.TopicGeneral,
		InterpreterTier:    models.TierInterpreter,
		ScheduledStartTime: start,
		ScheduledEndTime:   start.Add(time.Hour),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newInterpreter(id string, opts ...func(*models.Interpreter)) models.Interpreter {
	all := models.ChannelFlags{Audio: true, Video: true, FaceToFace: true}
	in := models.Interpreter{
		ID:                  id,
		UserID:              "user-" + id,
		RoleName:            models.RoleInterpreter,
		Status:              models.StatusActive,
		IsActive:            true,
		Gender:              models.GenderFemale,
		LanguagePairs:       []models.LanguagePair{{From: "en", To: "es"}},
		Location:            models.NewGeoPoint(-33.8688, 151.2093),
		OnlineFor:           all,
		PreBookedSettings:   all,
		ConsecutiveTopics:   map[models.Topic]bool{},
		CertificationLevels: []int{models.CertificationLevel3},
		OnDemandWindow:      &models.TimeWindow{From: testNow.Add(-time.Hour), To: testNow.Add(8 * time.Hour)},
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

func gender(g models.Gender) func(*models.Interpreter) {
	return func(in *models.Interpreter) { in.Gender = g }
}

func topics(ts ...models.Topic) func(*models.Interpreter) {
	return func(in *models.Interpreter) {
		for _, t := range ts {
			in.ConsecutiveTopics[t] = true
		}
	}
}

func levels(ls ...int) func(*models.Interpreter) {
	return func(in *models.Interpreter) { in.CertificationLevels = ls }
}

func userID(id string) func(*models.Interpreter) {
	return func(in *models.Interpreter) { in.UserID = id }
}

func engaged(status models.EngagementStatus, start, end time.Time, businessEnd *time.Time) func(*models.Interpreter) {
	return func(in *models.Interpreter) {
		in.Engagements = append(in.Engagements, models.Engagement{
			AppointmentID:   "other",
			Status:          status,
			Start:           start,
			End:             end,
			BusinessEndTime: businessEnd,
		})
	}
}

func genderPtr(g models.Gender) *models.Gender { return &g }
