package usecase

import (
	"context"

	"quizgate/internal/domain"
	"quizgate/internal/domain/model"
	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/security"
	"quizgate/internal/infra/store"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

const maxQuizIDLen = 50

// CatalogUseCase manages the quiz catalog (tests.json). Quiz ids end up
// in lookups and client-side routes, so every write path enforces the
// shared identifier rule.
type CatalogUseCase interface {
	List(ctx context.Context) ([]model.QuizSummary, error)
	Get(ctx context.Context, id string) (*model.Quiz, error)
	Add(ctx context.Context, quiz *model.Quiz) error
	Update(ctx context.Context, id string, quiz *model.Quiz) error
	Delete(ctx context.Context, id string) error
	// Import upserts: an existing id is replaced, a new one appended.
	Import(ctx context.Context, quiz *model.Quiz) (updated bool, err error)
	Export(ctx context.Context, id string) (*model.Quiz, string, error)
}

type catalogUC struct {
	store *store.Store
	log   *zerolog.Logger
}

func NewCatalogUseCase(st *store.Store, logger *zerolog.Logger) *catalogUC {
	return &catalogUC{store: st, log: logger}
}

func (c *catalogUC) List(ctx context.Context) ([]model.QuizSummary, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.List")()

	quizzes := c.store.LoadQuizzes()
	items := make([]model.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		items = append(items, q.Summary())
	}
	return items, nil
}

func (c *catalogUC) Get(ctx context.Context, id string) (*model.Quiz, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.Get")()

	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	for _, q := range c.store.LoadQuizzes() {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *catalogUC) Add(ctx context.Context, quiz *model.Quiz) error {
	defer logging.TraceDuration(c.log, "CatalogUC.Add")()

	if quiz == nil || !security.ValidateID(quiz.ID, maxQuizIDLen) {
		return domain.ErrInvalidArgument
	}
	return c.store.WithLock(func() error {
		quizzes := c.store.LoadQuizzes()
		for _, q := range quizzes {
			if q.ID == quiz.ID {
				return domain.ErrAlreadyExists
			}
		}
		quizzes = append(quizzes, quiz)
		return c.store.SaveQuizzes(quizzes)
	})
}

func (c *catalogUC) Update(ctx context.Context, id string, quiz *model.Quiz) error {
	defer logging.TraceDuration(c.log, "CatalogUC.Update")()

	if id == "" || quiz == nil {
		return domain.ErrInvalidArgument
	}
	return c.store.WithLock(func() error {
		quizzes := c.store.LoadQuizzes()
		for i, q := range quizzes {
			if q.ID == id {
				quiz.ID = id // the id is immutable across updates
				quizzes[i] = quiz
				return c.store.SaveQuizzes(quizzes)
			}
		}
		return domain.ErrNotFound
	})
}

func (c *catalogUC) Delete(ctx context.Context, id string) error {
	defer logging.TraceDuration(c.log, "CatalogUC.Delete")()

	if id == "" {
		return domain.ErrInvalidArgument
	}
	return c.store.WithLock(func() error {
		quizzes := c.store.LoadQuizzes()
		kept := quizzes[:0]
		for _, q := range quizzes {
			if q.ID != id {
				kept = append(kept, q)
			}
		}
		if len(kept) == len(quizzes) {
			return domain.ErrNotFound
		}
		return c.store.SaveQuizzes(kept)
	})
}

func (c *catalogUC) Import(ctx context.Context, quiz *model.Quiz) (bool, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.Import")()

	if quiz == nil || !security.ValidateID(quiz.ID, maxQuizIDLen) {
		return false, domain.ErrInvalidArgument
	}
	var updated bool
	err := c.store.WithLock(func() error {
		quizzes := c.store.LoadQuizzes()
		for i, q := range quizzes {
			if q.ID == quiz.ID {
				quizzes[i] = quiz
				updated = true
				return c.store.SaveQuizzes(quizzes)
			}
		}
		quizzes = append(quizzes, quiz)
		return c.store.SaveQuizzes(quizzes)
	})
	return updated, err
}

func (c *catalogUC) Export(ctx context.Context, id string) (*model.Quiz, string, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.Export")()

	quiz, err := c.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return quiz, quiz.ID + "_export.json", nil
}
