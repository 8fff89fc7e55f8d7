package model

import (
	"github.com/agri-ai/portal/internal/model/entities"
	"github.com/agri-ai/portal/internal/model/messages"
)

// Aliases exposing the common types to the services.

type (
	SensorReading    = messages.SensorReading
	AdvisoryEvent    = messages.AdvisoryEvent
	AlertResultEvent = messages.AlertResultEvent
	Field            = entities.Field
	Sensor           = entities.Sensor
	CropPolicy       = entities.CropPolicy
	PricePoint       = entities.PricePoint
	Article          = entities.Article
)

const (
	KindDHT11 = entities.KindDHT11
	KindSoil  = entities.KindSoil
)
