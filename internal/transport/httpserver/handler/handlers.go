package handler

import (
	devicesdomain "hotel-ops-go/internal/domain/devices"
	snapshotdomain "hotel-ops-go/internal/domain/snapshot"
	syncdomain "hotel-ops-go/internal/domain/sync"
	"hotel-ops-go/pkg/logger"
)

type Handlers struct {
	Sync     *syncdomain.Service
	Status   *syncdomain.StatusReporter
	Resolver *syncdomain.Resolver
	Snapshot *snapshotdomain.Service
	Devices  *devicesdomain.Service
	log      logger.Logger
}

func New(sync *syncdomain.Service, status *syncdomain.StatusReporter, resolver *syncdomain.Resolver, snapshot *snapshotdomain.Service, devices *devicesdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Sync:     sync,
		Status:   status,
		Resolver: resolver,
		Snapshot: snapshot,
		Devices:  devices,
		log:      log,
	}
}
