package factory

import (
	"fmt"
	"os"

	"github.com/mikey/intake-pipeline/internal/adapters/intake"
	"github.com/mikey/intake-pipeline/internal/config"
	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/ports"
	"github.com/mikey/intake-pipeline/internal/utils"
	"go.uber.org/zap"
)

// IntakeFactory creates intake listeners based on configuration
type IntakeFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.IntakeService
	text    *utils.TextProcessor
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(cfg *config.Config, logger *zap.Logger, service *core.IntakeService, text *utils.TextProcessor) *IntakeFactory {
	return &IntakeFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		text:    text,
	}
}

// CreateIntakeListener creates an intake listener based on the configuration
func (f *IntakeFactory) CreateIntakeListener() (ports.IntakeListener, error) {
	intakeCfg := f.cfg.GetIntake()

	switch intakeCfg.Type {
	case "smtp":
		return intake.NewSMTPIntake(
			f.service,
			f.logger.Named("smtp"),
			intakeCfg.ListenAddress,
			intakeCfg.Domain,
			intakeCfg.UploadDir,
			intakeCfg.MaxMessageBytes,
		), nil
	case "cli":
		return intake.NewCLIIntake(
			f.service,
			f.text,
			f.logger,
			os.Stdout,
			f.cfg.GetBool("cli.verbose"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported intake type: %s", intakeCfg.Type)
	}
}
