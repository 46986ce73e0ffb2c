package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/navbryce/feed-be/app"
	"github.com/navbryce/feed-be/config"
	"github.com/navbryce/feed-be/controllers"
	appDb "github.com/navbryce/feed-be/db"
	badgerstore "github.com/navbryce/feed-be/db/badger"
	"github.com/navbryce/feed-be/db/memory"
	"github.com/navbryce/feed-be/db/planetscale"
	"github.com/navbryce/feed-be/middleware"
	"github.com/navbryce/feed-be/routes"
	"github.com/navbryce/feed-be/services"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const (
	CredentialsPathEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"
	CredentialsJsonEnvVar = "GOOGLE_APPLICATION_CREDENTIALS_JSON"

	shutdownTimeout = 10 * time.Second
)

func main() {
	bootLog := logrus.New()
	conf, err := config.Load(bootLog)
	if err != nil {
		bootLog.WithError(err).Fatal("error loading configuration")
	}
	log, err := config.NewLogger(conf.Log)
	if err != nil {
		bootLog.WithError(err).Fatal("error configuring logger")
	}

	kv, err := openStore(conf, log)
	if err != nil {
		log.WithError(err).Fatal("error opening key-value store")
	}
	defer kv.Close()

	images, err := openImageStore(context.Background(), conf, kv, log)
	if err != nil {
		log.WithError(err).Fatal("error initializing image store")
	}

	identity := services.NewIdentityClient(conf.Identity.URL, conf.Identity.Timeout, log)
	postController := controllers.NewPostController(kv, log, &controllers.PostControllerOpts{MaxAttempts: conf.Store.MaxRetries})
	authController := controllers.NewAuthController(kv, identity, log, conf.Store.MaxRetries)

	gin.SetMode(conf.GinMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(conf.Origins)))

	routes.AddHealthCheckRoutes(&r.RouterGroup)
	routes.AddPostRoutes(&r.RouterGroup, postController, authController,
		app.NewIngestor(images, conf.Upload.MaxBytes), app.NewValidator(), log)
	routes.AddImageRoutes(&r.RouterGroup, images, log)
	routes.AddNotFound(r)

	srv := &http.Server{Addr: ":" + conf.Port, Handler: r}
	go func() {
		log.WithField("port", conf.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("error when attempting to run web server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}

func openStore(conf *config.Config, log *logrus.Logger) (appDb.KVStore, error) {
	switch conf.Store.Backend {
	case config.StoreBackendMemory:
		log.Warn("using the in-memory store, nothing will survive a restart")
		return memory.NewStore(), nil
	case config.StoreBackendMySQL:
		psdb, err := planetscale.GetDatabase(conf.MySQL)
		if err != nil {
			return nil, err
		}
		return psdb, nil
	default:
		store, err := badgerstore.NewStore(badgerstore.StoreConfig{
			Path:       conf.Badger.Path,
			GCSchedule: conf.Badger.GCSchedule,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func openImageStore(ctx context.Context, conf *config.Config, kv appDb.KVStore, log *logrus.Logger) (services.ImageStore, error) {
	if conf.Images.Backend != config.ImagesBackendGCS {
		return services.NewKVImageStore(kv, conf.PublicURL), nil
	}
	opts, err := firebaseCredentials(log)
	if err != nil {
		return nil, err
	}
	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: conf.Images.Bucket}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "error initializing firebase")
	}
	bucket, err := services.NewStorageBucket(ctx, firebaseApp, conf.Images.Bucket, conf.PublicURL)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to the image bucket")
	}
	return bucket, nil
}

// firebaseCredentials accepts either a credentials file path or the credentials JSON itself.
func firebaseCredentials(log *logrus.Logger) ([]option.ClientOption, error) {
	if credentialsPath, ok := os.LookupEnv(CredentialsPathEnvVar); ok {
		log.Infof("Credentials path detected in env. Expecting credentials to be at %v", credentialsPath)
		return nil, nil
	}
	if credentialsJson, ok := os.LookupEnv(CredentialsJsonEnvVar); ok {
		log.Info("Credentials JSON string detected in env.")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credentialsJson))}, nil
	}
	return nil, errors.Errorf("must specify either %v (a path)"+
		" or %v (credentials as JSON string)", CredentialsPathEnvVar, CredentialsJsonEnvVar)
}

func corsConfig(origins []string) cors.Config {
	corsConf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Cookie"},
		ExposeHeaders: []string{"Content-Length", "Set-Cookie"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			corsConf.AllowAllOrigins = true
			return corsConf
		}
	}
	corsConf.AllowOrigins = origins
	return corsConf
}
