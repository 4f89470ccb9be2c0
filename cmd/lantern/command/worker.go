package command

import (
	"fmt"

	"github.com/pixil98/go-lantern/internal/driver"
	"github.com/pixil98/go-lantern/internal/listener"
	"github.com/pixil98/go-lantern/internal/messaging"
	"github.com/pixil98/go-lantern/internal/terrain"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	stories, err := cfg.Storage.Stories.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating story store: %w", err)
	}

	sceneCfg := cfg.Scene.BuildSceneConfig()

	var hf *terrain.HeightField
	if sceneCfg.EnableTerrain {
		hf, err = cfg.Terrain.BuildHeightField()
		if err != nil {
			return nil, fmt.Errorf("creating terrain: %w", err)
		}
	}

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	publisher := messaging.NewScenePublisher(natsServer)

	sessions := cfg.Sessions.BuildManager(stories, sceneCfg, hf, publisher)
	cm := listener.NewConnectionManager(sessions)

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		worker, err := l.BuildListener(cm, publisher, hf)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = worker
	}

	drv := driver.NewDriver([]driver.Manager{
		sessions,
	}, driver.WithTickLength(cfg.tickInterval()))

	return service.WorkerList{
		"nats":      natsServer,
		"sessions":  sessions,
		"driver":    drv,
		"listeners": &listeners,
	}, nil
}
