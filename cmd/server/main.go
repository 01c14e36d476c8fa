package main

import (
	"context"
	goflag "flag"
	"fmt"
	"net/http"

	"github.com/Luismorlan/socialmux/app_setting"
	"github.com/Luismorlan/socialmux/events"
	"github.com/Luismorlan/socialmux/media"
	"github.com/Luismorlan/socialmux/server"
	"github.com/Luismorlan/socialmux/server/middlewares"
	"github.com/Luismorlan/socialmux/service"
	"github.com/Luismorlan/socialmux/store"
	. "github.com/Luismorlan/socialmux/utils"
	"github.com/Luismorlan/socialmux/utils/dotenv"
	"github.com/Luismorlan/socialmux/utils/flag"
	. "github.com/Luismorlan/socialmux/utils/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

func cleanup() {
	CloseProfiler()
	CloseTracer()
	CloseMetrics()
	Log.Info("api server shutdown")
}

func newStore(setting app_setting.ServerAppSetting) store.Store {
	if setting.STORE_BACKEND == app_setting.StoreBackendMemory {
		Log.Warn("using in-memory store, nothing is persisted")
		return store.NewMemoryStore()
	}

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect database: ", err)
	}
	DatabaseSetupAndMigration(db)
	s, err := store.NewGormStore(db)
	if err != nil {
		Log.Fatal("fail to create gorm store: ", err)
	}
	return s
}

func newMediaStore(setting app_setting.ServerAppSetting) media.MediaStore {
	if setting.MEDIA_BACKEND == app_setting.MediaBackendS3 {
		s, err := media.NewS3MediaStore(setting.S3_BUCKET, setting.S3_REGION, setting.MEDIA_URL_PREFIX)
		if err != nil {
			Log.Fatal("fail to create s3 media store: ", err)
		}
		return s
	}
	s, err := media.NewLocalMediaStore(setting.LOCAL_MEDIA_DIR, setting.MEDIA_URL_PREFIX)
	if err != nil {
		Log.Fatal("fail to create local media store: ", err)
	}
	return s
}

func newHashtagCache(ctx context.Context, setting app_setting.ServerAppSetting) service.HashtagCache {
	if !setting.ENABLE_REDIS_CACHE {
		return nil
	}
	client := GetRedisClient()
	if err := client.Ping(ctx); err != nil {
		Log.Warn("redis unreachable, hashtag cache disabled: ", err)
		return nil
	}
	return client
}

func newIdentityProvider(ctx context.Context, setting app_setting.ServerAppSetting) middlewares.IdentityProvider {
	if setting.BYPASS_AUTH {
		if dotenv.IsProdEnv() {
			Log.Fatal("BYPASS_AUTH must not be set in production")
		}
		Log.Warn("auth is bypassed, tokens are trusted as subjects")
		return middlewares.BypassProvider{}
	}
	// Abort directly if Cognito isn't setup successfully, which is crucial for
	// server side authorization.
	provider, err := middlewares.NewCognitoProvider(ctx)
	if err != nil {
		Log.Fatal("fail to setup Cognito client: ", err)
	}
	return provider
}

func main() {
	goflag.Parse()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	InitLogger()
	defer cleanup()

	setting, err := app_setting.ParseServerAppSetting(*flag.SettingPath)
	if err != nil {
		Log.Fatal(err)
	}

	StartTracer(*flag.ServiceName)
	StartProfiler(*flag.ServiceName)
	InitMetrics(setting.STATSD_ADDRESS)

	ctx := context.Background()

	bus := events.NewBus()
	engine := events.NewEngine(ctx, events.NewReporter(bus, Metrics))
	engine.Start()
	defer func() {
		bus.Close()
		engine.Shutdown()
	}()

	svc := service.New(
		newStore(setting),
		newMediaStore(setting),
		newHashtagCache(ctx, setting),
		bus,
	)

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))
	router.Use(gintrace.Middleware(*flag.ServiceName))

	if setting.MEDIA_BACKEND == app_setting.MediaBackendLocal {
		router.StaticFS("/media", http.Dir(setting.LOCAL_MEDIA_DIR))
	}

	server.NewHandler(svc, setting.MAX_UPLOAD_BYTES).
		Register(router, newIdentityProvider(ctx, setting))

	Log.Info("api server starts up")
	if err := router.Run(fmt.Sprintf(":%d", setting.PORT)); err != nil {
		Log.Error("api server stopped: ", err)
	}
}
