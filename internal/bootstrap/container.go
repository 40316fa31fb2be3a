package bootstrap

import (
	"smartfusion-dashboard/internal/config"
	"smartfusion-dashboard/internal/controller"
	"smartfusion-dashboard/internal/pkg/logger"
	"smartfusion-dashboard/internal/service"
	"smartfusion-dashboard/internal/websocket"
	"smartfusion-dashboard/pkg/audio"
	"smartfusion-dashboard/pkg/events"
	"smartfusion-dashboard/pkg/ragapi"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	SearchController   controller.ISearchController
	ChatController     controller.IChatController
	VoiceController    controller.IVoiceController

	// Background Services (Exposed for main.go to run)
	NotifierService service.INotifierService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	backend := ragapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisher := events.NewPublisher(pubSub)

	// 3. WebSocket Hub
	wsHub := websocket.NewHub(sysLogger)
	go wsHub.Run()

	// 4. Audio boundary. The browser feeds capture chunks over HTTP and
	// fetches synthesized clips the same way, so both devices are
	// in-process staging buffers.
	captureSource := audio.NewPipeSource()
	clipPlayer := audio.NewClipPlayer()

	// 5. Services
	registryService := service.NewRegistryService(backend, publisher, sysLogger)
	ingestionService := service.NewIngestionService(backend, registryService, publisher, cfg.Ingest, sysLogger)
	searchService := service.NewSearchService(backend, cfg.Backend.TopK, cfg.Backend.MetadataTTL, sysLogger)
	conversationService := service.NewConversationService(
		backend,
		searchService,
		registryService,
		publisher,
		cfg.Backend.TopK,
		sysLogger,
	)
	captureService := service.NewCaptureService(backend, captureSource, conversationService, sysLogger)
	playbackService := service.NewPlaybackService(backend, clipPlayer, sysLogger)
	notifierService := service.NewNotifierService(pubSub, wsHub, sysLogger)

	// 6. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(registryService, ingestionService),
		SearchController:   controller.NewSearchController(searchService),
		ChatController:     controller.NewChatController(conversationService),
		VoiceController: controller.NewVoiceController(
			captureService,
			playbackService,
			captureSource,
			clipPlayer,
		),
		NotifierService: notifierService,
		WebSocketHub:    wsHub,
	}
}
