package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"invoiceflow/internal/analytics"
	"invoiceflow/internal/models"
	"invoiceflow/internal/reports"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	return m.Called(ctx, recipient, subject, body).Error(0)
}

func (m *MockNotificationService) SendPasswordReset(ctx context.Context, recipient, resetURL string) error {
	return m.Called(ctx, recipient, resetURL).Error(0)
}

type MockLowStockSource struct {
	mock.Mock
}

func (m *MockLowStockSource) LowStockAlerts(ctx context.Context) ([]*models.InventoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ProfitLoss(ctx context.Context, q reports.Query) (*reports.Report, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.Report), args.Error(1)
}

func (m *MockReportService) InventoryOverview(ctx context.Context) (*analytics.InventoryOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.InventoryOverview), args.Error(1)
}

func (m *MockReportService) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockBackupRunner struct {
	mock.Mock
}

func (m *MockBackupRunner) ScheduledBackup(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type EmailTasksTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (suite *EmailTasksTestSuite) SetupTest() {
	suite.ctx = context.Background()
}

func (suite *EmailTasksTestSuite) TestEnqueuePasswordReset() {
	client := new(MockEnqueuer)
	client.On("EnqueueContext", suite.ctx, mock.MatchedBy(func(task *asynq.Task) bool {
		var p PasswordResetPayload
		if task.Type() != TypePasswordResetEmail || json.Unmarshal(task.Payload(), &p) != nil {
			return false
		}
		return p.Email == "owner@shop.test" && p.ResetURL == "https://app.test/reset?token=abc"
	})).Return(&asynq.TaskInfo{ID: "t1", Queue: QueueCritical}, nil)

	q := NewMailQueue(client)
	suite.NoError(q.EnqueuePasswordReset(suite.ctx, "owner@shop.test", "https://app.test/reset?token=abc"))
	client.AssertExpectations(suite.T())
}

func (suite *EmailTasksTestSuite) TestEnqueuePasswordReset_RedisDown() {
	client := new(MockEnqueuer)
	client.On("EnqueueContext", suite.ctx, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

	err := NewMailQueue(client).EnqueuePasswordReset(suite.ctx, "owner@shop.test", "https://app.test/reset")
	suite.ErrorContains(err, "enqueue password reset")
}

func (suite *EmailTasksTestSuite) TestHandlePasswordReset() {
	notifier := new(MockNotificationService)
	notifier.On("SendPasswordReset", suite.ctx, "owner@shop.test", "https://app.test/reset?token=abc").Return(nil)

	task, err := NewPasswordResetTask("owner@shop.test", "https://app.test/reset?token=abc")
	suite.Require().NoError(err)

	suite.NoError(NewEmailHandlers(notifier).HandlePasswordReset(suite.ctx, task))
	notifier.AssertExpectations(suite.T())
}

func (suite *EmailTasksTestSuite) TestHandlePasswordReset_SMTPFailureRetries() {
	notifier := new(MockNotificationService)
	notifier.On("SendPasswordReset", suite.ctx, mock.Anything, mock.Anything).Return(errors.New("421 try later"))

	task, err := NewPasswordResetTask("owner@shop.test", "https://app.test/reset")
	suite.Require().NoError(err)

	err = NewEmailHandlers(notifier).HandlePasswordReset(suite.ctx, task)
	suite.Error(err)
	suite.False(errors.Is(err, asynq.SkipRetry))
}

func (suite *EmailTasksTestSuite) TestHandlePasswordReset_BadPayloadSkipsRetry() {
	notifier := new(MockNotificationService)
	handler := NewEmailHandlers(notifier)

	err := handler.HandlePasswordReset(suite.ctx, asynq.NewTask(TypePasswordResetEmail, []byte("{not json")))
	suite.ErrorIs(err, asynq.SkipRetry)

	err = handler.HandlePasswordReset(suite.ctx, asynq.NewTask(TypePasswordResetEmail, []byte(`{"email":""}`)))
	suite.ErrorIs(err, asynq.SkipRetry)

	notifier.AssertNotCalled(suite.T(), "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmailTasksTestSuite(t *testing.T) {
	suite.Run(t, new(EmailTasksTestSuite))
}

func TestCheckLowStock(t *testing.T) {
	source := new(MockLowStockSource)
	source.On("LowStockAlerts", mock.Anything).Return([]*models.InventoryItem{
		{ID: "a", Name: "Rice", Category: "Grocery", Stock: 4},
		{ID: "b", Name: "Soap", Category: "Personal care", Stock: 0},
		{ID: "c", Name: "Oil", Category: "Grocery", Stock: 9},
	}, nil)

	alerts, err := NewInventoryAlertService(source).CheckLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, "Rice", alerts[0].ItemName)
	assert.Equal(t, models.AlertTypeLowStock, alerts[0].Type)
	assert.Equal(t, models.LowStockThreshold, alerts[0].Threshold)
	assert.Equal(t, models.AlertTypeOutOfStock, alerts[1].Type)
}

func TestScheduledLowStockCheck_SourceError(t *testing.T) {
	source := new(MockLowStockSource)
	source.On("LowStockAlerts", mock.Anything).Return(nil, errors.New("pool closed"))

	err := NewInventoryAlertService(source).ScheduledLowStockCheck(context.Background())
	assert.EqualError(t, err, "pool closed")
}

func TestReportRefresh(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Invalidate", mock.Anything).Return(errors.New("redis down"))
	svc.On("ProfitLoss", mock.Anything, reports.Query{Window: reports.WindowThisMonth}).
		Return(&reports.Report{Points: []reports.Point{{}, {}}}, nil)

	result, err := NewReportRefreshService(svc).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Points)
	assert.Equal(t, reports.WindowThisMonth, result.Window)
}

func TestJobScheduler_RegistersJobs(t *testing.T) {
	source := new(MockLowStockSource)
	backups := new(MockBackupRunner)

	js, err := NewJobScheduler(context.Background(), SchedulerConfig{BackupCron: "0 2 * * *"},
		NewInventoryAlertService(source), NewReportRefreshService(new(MockReportService)), backups)
	require.NoError(t, err)
	defer js.Stop()

	names := js.JobNames()
	sort.Strings(names)
	assert.Equal(t, []string{"daily-backup", "inventory-alerts", "report-refresh"}, names)
	assert.Error(t, js.RunNow("nope"))
}

func TestJobScheduler_RunBackupNow(t *testing.T) {
	backups := new(MockBackupRunner)
	done := make(chan struct{})
	backups.On("ScheduledBackup", mock.Anything).
		Return("invoiceflow-backup-2024-01-15.json", nil).
		Run(func(mock.Arguments) { close(done) }).
		Once()

	js, err := NewJobScheduler(context.Background(), SchedulerConfig{BackupCron: "0 2 * * *"}, nil, nil, backups)
	require.NoError(t, err)
	js.Start()
	defer js.Stop()

	require.NoError(t, js.RunNow("daily-backup"))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("backup job did not run")
	}
}

func TestJobScheduler_InvalidCron(t *testing.T) {
	_, err := NewJobScheduler(context.Background(), SchedulerConfig{BackupCron: "every night"}, nil, nil, new(MockBackupRunner))
	assert.Error(t, err)
}
