package app

import (
	"context"
	"database/sql"
	"log"

	"github.com/rs/zerolog"

	"github.com/aregalado/plata/internal/client/db"
	"github.com/aregalado/plata/internal/client/db/pg"
	"github.com/aregalado/plata/internal/closer"
	"github.com/aregalado/plata/internal/config"
	"github.com/aregalado/plata/internal/config/env"
	"github.com/aregalado/plata/internal/handlers"
	"github.com/aregalado/plata/internal/logger"
	"github.com/aregalado/plata/internal/repository"
	"github.com/aregalado/plata/internal/services"
)

type ServiceProvider struct {
	pgConfig   config.PGConfig
	httpConfig config.HTTPConfig
	logConfig  config.LogConfig

	logSet bool
	log    zerolog.Logger

	dbClient db.Client

	// Repositories
	accountRepo      *repository.AccountRepository
	transactionRepo  *repository.TransactionRepository
	splitRepo        *repository.SplitRepository
	creditCardRepo   *repository.CreditCardRepository
	installmentRepo  *repository.InstallmentRepository
	budgetRepo       *repository.BudgetRepository
	goalRepo         *repository.GoalRepository
	contributionRepo *repository.ContributionRepository
	recurringRepo    *repository.RecurringRepository
	subscriptionRepo *repository.SubscriptionRepository

	// Services
	balanceService      *services.BalanceService
	transactionService  *services.TransactionService
	creditCardService   *services.CreditCardService
	budgetService       *services.BudgetService
	goalService         *services.GoalService
	recurringService    *services.RecurringService
	subscriptionService *services.SubscriptionService
	canSpendService     *services.CanSpendService
	scheduler           *services.Scheduler

	// HTTP
	router *handlers.Router
}

func NewServiceProvider() *ServiceProvider {
	return &ServiceProvider{}
}

func (s *ServiceProvider) PGConfig() config.PGConfig {
	if s.pgConfig == nil {
		pgConfig, err := env.NewPGConfig()
		if err != nil {
			log.Fatalf("failed to get pg config: %v", err)
		}
		s.pgConfig = pgConfig
	}
	return s.pgConfig
}

func (s *ServiceProvider) HTTPConfig() config.HTTPConfig {
	if s.httpConfig == nil {
		httpConfig, err := env.NewHTTPConfig()
		if err != nil {
			log.Fatalf("failed to get http config: %v", err)
		}
		s.httpConfig = httpConfig
	}
	return s.httpConfig
}

func (s *ServiceProvider) LogConfig() config.LogConfig {
	if s.logConfig == nil {
		logConfig, err := env.NewLogConfig()
		if err != nil {
			log.Fatalf("failed to get log config: %v", err)
		}
		s.logConfig = logConfig
	}
	return s.logConfig
}

func (s *ServiceProvider) Logger() zerolog.Logger {
	if !s.logSet {
		s.log = logger.New(s.LogConfig().Level())
		s.logSet = true
	}
	return s.log
}

func (s *ServiceProvider) DBClient(ctx context.Context) db.Client {
	if s.dbClient == nil {
		cl, err := pg.New(ctx, s.PGConfig().DSN())
		if err != nil {
			log.Fatalf("failed to get db client: %v", err)
		}

		closer.Add(func() error {
			return cl.Close()
		})
		s.dbClient = cl
	}
	return s.dbClient
}

func (s *ServiceProvider) SQLDB(ctx context.Context) *sql.DB {
	return s.DBClient(ctx).DB()
}

func (s *ServiceProvider) AccountRepository(ctx context.Context) *repository.AccountRepository {
	if s.accountRepo == nil {
		s.accountRepo = repository.NewAccountRepository(s.SQLDB(ctx))
	}
	return s.accountRepo
}

func (s *ServiceProvider) TransactionRepository(ctx context.Context) *repository.TransactionRepository {
	if s.transactionRepo == nil {
		s.transactionRepo = repository.NewTransactionRepository(s.SQLDB(ctx))
	}
	return s.transactionRepo
}

func (s *ServiceProvider) SplitRepository(ctx context.Context) *repository.SplitRepository {
	if s.splitRepo == nil {
		s.splitRepo = repository.NewSplitRepository(s.SQLDB(ctx))
	}
	return s.splitRepo
}

func (s *ServiceProvider) CreditCardRepository(ctx context.Context) *repository.CreditCardRepository {
	if s.creditCardRepo == nil {
		s.creditCardRepo = repository.NewCreditCardRepository(s.SQLDB(ctx))
	}
	return s.creditCardRepo
}

func (s *ServiceProvider) InstallmentRepository(ctx context.Context) *repository.InstallmentRepository {
	if s.installmentRepo == nil {
		s.installmentRepo = repository.NewInstallmentRepository(s.SQLDB(ctx))
	}
	return s.installmentRepo
}

func (s *ServiceProvider) BudgetRepository(ctx context.Context) *repository.BudgetRepository {
	if s.budgetRepo == nil {
		s.budgetRepo = repository.NewBudgetRepository(s.SQLDB(ctx))
	}
	return s.budgetRepo
}

func (s *ServiceProvider) GoalRepository(ctx context.Context) *repository.GoalRepository {
	if s.goalRepo == nil {
		s.goalRepo = repository.NewGoalRepository(s.SQLDB(ctx))
	}
	return s.goalRepo
}

func (s *ServiceProvider) ContributionRepository(ctx context.Context) *repository.ContributionRepository {
	if s.contributionRepo == nil {
		s.contributionRepo = repository.NewContributionRepository(s.SQLDB(ctx))
	}
	return s.contributionRepo
}

func (s *ServiceProvider) RecurringRepository(ctx context.Context) *repository.RecurringRepository {
	if s.recurringRepo == nil {
		s.recurringRepo = repository.NewRecurringRepository(s.SQLDB(ctx))
	}
	return s.recurringRepo
}

func (s *ServiceProvider) SubscriptionRepository(ctx context.Context) *repository.SubscriptionRepository {
	if s.subscriptionRepo == nil {
		s.subscriptionRepo = repository.NewSubscriptionRepository(s.SQLDB(ctx))
	}
	return s.subscriptionRepo
}

func (s *ServiceProvider) BalanceService(ctx context.Context) *services.BalanceService {
	if s.balanceService == nil {
		s.balanceService = services.NewBalanceService(
			s.AccountRepository(ctx),
			s.TransactionRepository(ctx),
		)
	}
	return s.balanceService
}

func (s *ServiceProvider) TransactionService(ctx context.Context) *services.TransactionService {
	if s.transactionService == nil {
		s.transactionService = services.NewTransactionService(
			s.AccountRepository(ctx),
			s.TransactionRepository(ctx),
			s.SplitRepository(ctx),
			s.CreditCardRepository(ctx),
			s.InstallmentRepository(ctx),
			s.Logger(),
		)
	}
	return s.transactionService
}

func (s *ServiceProvider) CreditCardService(ctx context.Context) *services.CreditCardService {
	if s.creditCardService == nil {
		s.creditCardService = services.NewCreditCardService(
			s.CreditCardRepository(ctx),
			s.InstallmentRepository(ctx),
			s.TransactionRepository(ctx),
			s.AccountRepository(ctx),
			s.Logger(),
		)
	}
	return s.creditCardService
}

func (s *ServiceProvider) BudgetService(ctx context.Context) *services.BudgetService {
	if s.budgetService == nil {
		s.budgetService = services.NewBudgetService(
			s.BudgetRepository(ctx),
			s.TransactionRepository(ctx),
			s.Logger(),
		)
	}
	return s.budgetService
}

func (s *ServiceProvider) GoalService(ctx context.Context) *services.GoalService {
	if s.goalService == nil {
		s.goalService = services.NewGoalService(
			s.GoalRepository(ctx),
			s.ContributionRepository(ctx),
			s.Logger(),
		)
	}
	return s.goalService
}

func (s *ServiceProvider) RecurringService(ctx context.Context) *services.RecurringService {
	if s.recurringService == nil {
		s.recurringService = services.NewRecurringService(
			s.RecurringRepository(ctx),
			s.TransactionRepository(ctx),
			s.Logger(),
		)
	}
	return s.recurringService
}

func (s *ServiceProvider) SubscriptionService(ctx context.Context) *services.SubscriptionService {
	if s.subscriptionService == nil {
		s.subscriptionService = services.NewSubscriptionService(
			s.SubscriptionRepository(ctx),
			s.TransactionRepository(ctx),
			s.Logger(),
		)
	}
	return s.subscriptionService
}

func (s *ServiceProvider) CanSpendService(ctx context.Context) *services.CanSpendService {
	if s.canSpendService == nil {
		s.canSpendService = services.NewCanSpendService(
			s.AccountRepository(ctx),
			s.GoalRepository(ctx),
			s.CreditCardRepository(ctx),
			s.BudgetRepository(ctx),
			s.BalanceService(ctx),
			s.CreditCardService(ctx),
			s.BudgetService(ctx),
			s.Logger(),
		)
	}
	return s.canSpendService
}

func (s *ServiceProvider) Scheduler(ctx context.Context) *services.Scheduler {
	if s.scheduler == nil {
		s.scheduler = services.NewScheduler(
			s.RecurringService(ctx),
			s.BudgetService(ctx),
			s.Logger(),
		)
	}
	return s.scheduler
}

func (s *ServiceProvider) Router(ctx context.Context) *handlers.Router {
	if s.router == nil {
		s.router = &handlers.Router{
			Accounts:      handlers.NewAccountsHandler(s.AccountRepository(ctx), s.BalanceService(ctx), s.Logger()),
			Transactions:  handlers.NewTransactionsHandler(s.TransactionRepository(ctx), s.TransactionService(ctx), s.Logger()),
			CreditCards:   handlers.NewCreditCardsHandler(s.CreditCardRepository(ctx), s.CreditCardService(ctx), s.Logger()),
			Budgets:       handlers.NewBudgetsHandler(s.BudgetRepository(ctx), s.BudgetService(ctx), s.Logger()),
			Goals:         handlers.NewGoalsHandler(s.GoalRepository(ctx), s.GoalService(ctx), s.Logger()),
			Recurring:     handlers.NewRecurringHandler(s.RecurringRepository(ctx), s.RecurringService(ctx), s.Logger()),
			Subscriptions: handlers.NewSubscriptionsHandler(s.SubscriptionService(ctx), s.Logger()),
			CanSpend:      handlers.NewCanSpendHandler(s.CanSpendService(ctx), s.Logger()),
			Log:           s.Logger(),
		}
	}
	return s.router
}
