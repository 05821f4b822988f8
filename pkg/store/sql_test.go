package store

import (
	"context"
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/45ck/Portarium-sub005/pkg/domain"
	"github.com/45ck/Portarium-sub005/pkg/uow"
)

func TestSQLEntityStoreGetWorkspaceMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT record_json FROM workspaces").
		WithArgs("t-1", "ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"record_json"}))

	s := NewSQLEntityStore(db)
	ws, err := s.GetWorkspaceByID(context.Background(), "t-1", "ws-1")
	require.NoError(t, err)
	assert.Nil(t, ws)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEntityStoreGetWorkflowHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	wf := domain.WorkflowV1{SchemaVersion: 1, WorkflowID: "wf-1", WorkspaceID: "ws-1", Name: "Onboarding", Active: true, ExecutionTier: domain.TierAuto}
	raw, err := json.Marshal(wf)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT record_json FROM workflows").
		WithArgs("t-1", "wf-1").
		WillReturnRows(sqlmock.NewRows([]string{"record_json"}).AddRow(string(raw)))

	s := NewSQLEntityStore(db)
	got, err := s.GetWorkflowByID(context.Background(), "t-1", "wf-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEntityStoreGetApprovalHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ap := domain.ApprovalV1{SchemaVersion: 1, ApprovalID: "ap-1", WorkspaceID: "t-1", Status: domain.ApprovalPending}
	raw, err := json.Marshal(ap)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT record_json FROM approvals").
		WithArgs("t-1", "ap-1").
		WillReturnRows(sqlmock.NewRows([]string{"record_json"}).AddRow(string(raw)))

	s := NewSQLEntityStore(db)
	got, err := s.GetApprovalByID(context.Background(), "t-1", "ap-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ApprovalPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEntityStoreSaveWorkItemJoinsUnitOfWork(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO work_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	s := NewSQLEntityStore(db)
	err = uow.NewSQL(db).Execute(context.Background(), func(ctx context.Context) error {
		return s.SaveWorkItem(ctx, "t-1", domain.WorkItemV1{WorkItemID: "wi-1", Title: "Review"})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEntityStoreSaveJoinsUnitOfWork(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	s := NewSQLEntityStore(db)
	err = uow.NewSQL(db).Execute(context.Background(), func(ctx context.Context) error {
		return s.SaveRun(ctx, "t-1", domain.RunV1{RunID: "run-1", Status: domain.RunPending})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
