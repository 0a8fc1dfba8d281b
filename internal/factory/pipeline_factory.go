package factory

import (
	"github.com/mikey/intake-pipeline/internal/allowlist"
	"github.com/mikey/intake-pipeline/internal/classifier"
	"github.com/mikey/intake-pipeline/internal/config"
	"github.com/mikey/intake-pipeline/internal/extraction"
	"github.com/mikey/intake-pipeline/internal/rules"
	"github.com/mikey/intake-pipeline/internal/utils"
	"go.uber.org/zap"
)

// PipelineFactory creates the classification and extraction components
type PipelineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPipelineFactory creates a new PipelineFactory
func NewPipelineFactory(cfg *config.Config, logger *zap.Logger) *PipelineFactory {
	return &PipelineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *PipelineFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreateRules returns the configured rule set
func (f *PipelineFactory) CreateRules() (rules.Rules, error) {
	return f.cfg.GetRules()
}

// CreateClassifier creates a classifier over r
func (f *PipelineFactory) CreateClassifier(r rules.Rules, text *utils.TextProcessor) *classifier.Classifier {
	return classifier.New(r, text, f.logger.Named("classifier"))
}

// CreatePipeline creates an extraction pipeline over r
func (f *PipelineFactory) CreatePipeline(r rules.Rules, text *utils.TextProcessor) *extraction.Pipeline {
	return extraction.New(r, text, f.logger.Named("extraction"))
}

// CreateAllowList creates the upload extension checker
func (f *PipelineFactory) CreateAllowList() *allowlist.Checker {
	return allowlist.NewChecker(f.cfg.GetStringSlice("intake.allowed_extensions"), f.logger)
}
