package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loftline/propgraph/internal/queue"
	mid "github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/internal/storage"
	"github.com/loftline/propgraph/internal/util"
	"github.com/loftline/propgraph/pkg/ai"
	aiollama "github.com/loftline/propgraph/pkg/ai/ollama"
	aiopenai "github.com/loftline/propgraph/pkg/ai/openai"
	"github.com/loftline/propgraph/pkg/logger"
	storepgx "github.com/loftline/propgraph/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewAIClient builds the configured chat client. AI_ADAPTER selects the
// backend, any value other than "ollama" means OpenAI-compatible.
func NewAIClient() (ai.UpdateAIClient, error) {
	adapter := util.GetEnv("AI_ADAPTER")

	if adapter == "ollama" {
		return aiollama.NewUpdateOllamaClient(aiollama.NewUpdateOllamaClientParams{
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQ", 15)),
		})
	}

	return aiopenai.NewUpdateOpenAIClient(aiopenai.NewUpdateOpenAIClientParams{
		ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

		ChatURL: util.GetEnv("AI_CHAT_URL"),
		ChatKey: util.GetEnv("AI_CHAT_KEY"),
	}), nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
	k, err := keyfunc.NewDefault([]string{jwksUrl})
	if err != nil {
		logger.Fatal("Failed to load jwks keys", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := storepgx.Migrate(databaseURL); err != nil {
		logger.Fatal("Failed to migrate database schema", "err", err)
	}

	conn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	aiClient, err := NewAIClient()
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}

	s3Client := storage.NewS3Client(ctx)

	masterAPIKey := util.GetEnv("MASTER_API_KEY")
	masterUserID := int64(util.GetEnvInt("MASTER_USER_ID", 0))
	masterUserRole := util.GetEnv("MASTER_USER_ROLE")

	e.Use(mid.AppContextMiddleware(conn, ch, &k, aiClient, s3Client, masterAPIKey, masterUserID, masterUserRole))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("32M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
