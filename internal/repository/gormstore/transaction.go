package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangang/teamtask/internal/repository"
	"gorm.io/gorm"
)

type txKey struct{}

// TransactionManager runs functions inside a gorm transaction carried by
// the context, so every repository call made with that context joins it.
type TransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

func (tm *TransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls reuse the outer transaction.
	if tx := extractTx(ctx); tx != nil {
		return fn(ctx)
	}

	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(injectTx(ctx, tx))
	})
}

func injectTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func extractTx(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// getConn returns the transaction from ctx, or db bound to ctx.
func getConn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := extractTx(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// translate maps gorm errors to repository sentinels. Errors raised by
// model hooks pass through untouched.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", repository.ErrReferenced, err)
	}
	return err
}

// New wires every gorm-backed repository around db.
func New(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Teams:    NewTeamRepository(db),
		Members:  NewTeamMemberRepository(db),
		Projects: NewProjectRepository(db),
		Tasks:    NewTaskRepository(db),
		Comments: NewCommentRepository(db),
		Invites:  NewInviteRepository(db),
		Tx:       NewTransactionManager(db),
	}
}
