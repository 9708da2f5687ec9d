package services

import (
	"github.com/pkg/errors"

	"github.com/customeros/mailsorter/config"
	"github.com/customeros/mailsorter/interfaces"
	"github.com/customeros/mailsorter/internal/logger"
	"github.com/customeros/mailsorter/internal/repository"
	"github.com/customeros/mailsorter/services/classifier"
	"github.com/customeros/mailsorter/services/email_processor"
	"github.com/customeros/mailsorter/services/events"
	"github.com/customeros/mailsorter/services/imap"
	"github.com/customeros/mailsorter/services/parser"
	"github.com/customeros/mailsorter/services/storage"
)

type Services struct {
	MailboxFactory    interfaces.MailboxClientFactory
	MessageParser     interfaces.MessageParser
	ClassifierService interfaces.ClassifierService
	EventsPublisher   interfaces.EventsPublisher
	StorageService    interfaces.StorageService
	RawEmailArchive   interfaces.RawEmailArchiver
	EmailProcessor    *email_processor.Processor
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	publisher, err := events.NewEventsPublisher(cfg.AppConfig.RabbitMQURL, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init events publisher")
	}

	storageService, err := storage.NewR2StorageService(cfg.R2StorageConfig)
	if err != nil {
		publisher.Close()
		return nil, errors.Wrap(err, "failed to init raw email storage")
	}

	// archiving stays off unless R2 credentials are configured
	var archive interfaces.RawEmailArchiver
	if storageService != nil {
		archive = storage.NewRawEmailArchive(storageService)
	} else {
		log.Info("R2 storage not configured, raw emails will not be archived")
	}

	services := Services{
		MailboxFactory:    imap.NewClientFactory(cfg.MailboxConfig, log),
		MessageParser:     parser.NewMessageParser(cfg.MailboxConfig.Username),
		ClassifierService: classifier.NewClassifierService(cfg.ClassifierConfig, log),
		EventsPublisher:   publisher,
		StorageService:    storageService,
		RawEmailArchive:   archive,
	}

	services.EmailProcessor = email_processor.NewProcessor(
		services.MailboxFactory,
		services.MessageParser,
		services.ClassifierService,
		repos.EmailRepository,
		services.EventsPublisher,
		services.RawEmailArchive,
		cfg.PipelineConfig.WindowDays,
		log,
	)

	return &services, nil
}

func (s *Services) Close() error {
	if s.EventsPublisher == nil {
		return nil
	}
	return s.EventsPublisher.Close()
}
