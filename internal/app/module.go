package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/api/server"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/billing"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/callwindow"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/campaign"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/entitlement"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/lifecycle"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/retention"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/trial"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/platform/cache"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/platform/db"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/config"
	"github.com/usecmdr-rgb/ovrsee-sub007/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cache.Module,
	server.Module,
	callwindow.Module,
	lifecycle.Module,
	trial.Module,
	billing.Module,
	entitlement.Module,
	campaign.Module,
	retention.Module,
)
