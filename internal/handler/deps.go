package handler

import (
	"typerace/internal/app/directory"
	"typerace/internal/app/multiplayer"
	"typerace/internal/app/race"
	"typerace/internal/configs"
	"typerace/internal/pkg/pow"
)

type AppDeps struct {
	Config    *configs.AppConfig
	Races     *race.Service
	Hub       *multiplayer.Hub
	Directory directory.Directory
	PoW       *pow.Manager
}
