package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/cache"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/config"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/events"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/llm"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/painradar"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/storage"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

// Services is the fully wired service layer shared by the HTTP API and crmctl.
type Services struct {
	Sessions      *auth.Store
	Users         *service.UserService
	Workspaces    *service.WorkspaceService
	Clients       *service.ClientService
	Projects      *service.ProjectService
	Tasks         *service.TaskService
	Events        *service.EventService
	Milestones    *service.MilestoneService
	Touches       *service.TouchService
	Feedback      *service.FeedbackService
	Activity      *service.ActivityService
	Comments      *service.CommentService
	Notifications *service.NotificationService
	Search        *service.SearchService
	Dashboard     *service.DashboardService
	Digest        *service.DigestService
	PainRadar     *service.PainRadarService

	publisher events.Publisher
}

func buildServices(ctx context.Context, cfg config.Config, log *zap.Logger, db *pgxpool.Pool, rdb *redis.Client) (*Services, error) {
	loc := cfg.App.Location()

	userRepo := repo.NewPGUserRepo(db)
	workspaceRepo := repo.NewPGWorkspaceRepo(db)
	clientRepo := repo.NewPGClientRepo(db)
	projectRepo := repo.NewPGProjectRepo(db)
	taskRepo := repo.NewPGTaskRepo(db)
	eventRepo := repo.NewPGEventRepo(db)
	touchRepo := repo.NewPGTouchRepo(db)
	notificationRepo := repo.NewPGNotificationRepo(db)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ActivityTopic, log.Named("kafka"))
		log.Info("activity stream enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.ActivityTopic))
	}

	var store service.ObjectStore
	if cfg.S3.Bucket != "" {
		s, err := storage.New(ctx, storage.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
		if err != nil {
			_ = publisher.Close()
			return nil, fmt.Errorf("s3: %w", err)
		}
		store = s
	} else {
		log.Info("S3_BUCKET not set, project files are disabled")
	}

	workspaceCache := cache.NewWorkspaceCache(rdb, cfg.Redis.DefaultTTL.Duration())
	notifier := telegram.NewNotifier(
		telegram.NewClient(cfg.Telegram.APIURL, &http.Client{Timeout: 15 * time.Second}),
		cfg.Telegram.BotToken, cfg.App.URL, log.Named("telegram"))

	activity := service.NewActivityService(repo.NewPGActivityRepo(db), publisher, log.Named("activity"))
	hooks := service.Hooks{
		Activity:   activity,
		Notifier:   notifier,
		Workspaces: workspaceRepo,
		Users:      userRepo,
		Cache:      workspaceCache,
		Log:        log,
	}

	model := llm.NewClientWithBaseURL(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, cfg.App.URL, cfg.OpenRouter.BaseURL)
	if !model.Configured() {
		log.Warn("OPENROUTER_API_KEY not set, pain analysis is disabled")
	}
	searcher := painradar.NewSearcher(painradar.NewLimiter(), log.Named("painradar"),
		painradar.NewReddit("", nil),
		painradar.NewHackerNews("", nil),
		painradar.NewHabr("", nil),
		painradar.NewWeb(painradar.WebConfig{
			GoogleAPIKey:   cfg.Search.GoogleAPIKey,
			GoogleEngineID: cfg.Search.GoogleEngineID,
			BraveAPIKey:    cfg.Search.BraveAPIKey,
		}, nil),
	)

	return &Services{
		Sessions:   auth.NewStore(rdb, cfg.Auth.SessionTTL.Duration()),
		Users:      service.NewUserService(userRepo, workspaceRepo),
		Workspaces: service.NewWorkspaceService(workspaceRepo, userRepo, repo.NewPGInviteRepo(db),
			auth.NewInviteSigner(cfg.Auth.InviteSigningKey), cfg.Auth.InviteTTL.Duration(), hooks),
		Clients:       service.NewClientService(clientRepo, hooks),
		Projects:      service.NewProjectService(projectRepo, clientRepo, repo.NewPGFileRepo(db), store, hooks),
		Tasks:         service.NewTaskService(taskRepo, projectRepo, workspaceRepo, notificationRepo, hooks),
		Events:        service.NewEventService(eventRepo, projectRepo, taskRepo, clientRepo, hooks, loc),
		Milestones:    service.NewMilestoneService(repo.NewPGMilestoneRepo(db), projectRepo, hooks),
		Touches:       service.NewTouchService(touchRepo, workspaceRepo, hooks),
		Feedback:      service.NewFeedbackService(repo.NewPGFeedbackRepo(db), hooks),
		Activity:      activity,
		Comments:      service.NewCommentService(taskRepo, projectRepo, hooks),
		Notifications: service.NewNotificationService(notificationRepo),
		Search:        service.NewSearchService(repo.NewPGSearchRepo(db), workspaceCache),
		Dashboard:     service.NewDashboardService(repo.NewPGDashboardRepo(db), workspaceCache),
		Digest: service.NewDigestService(workspaceRepo, userRepo, taskRepo, projectRepo, eventRepo, touchRepo,
			notifier, loc, log.Named("digest")),
		PainRadar: service.NewPainRadarService(repo.NewPGPainRepo(db), searcher, model, hooks,
			cfg.Search.MaxConcurrent, cfg.Search.ScanTimeout.Duration()),
		publisher: publisher,
	}, nil
}

// close waits for background scans and flushes the activity stream.
func (s *Services) close() error {
	s.PainRadar.Wait()
	return s.publisher.Close()
}
