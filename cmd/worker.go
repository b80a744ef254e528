package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/backstage/services/picking/internal/messaging"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that imports lots from Azure Service Bus and projects activity events into Elasticsearch`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	g, ctx := errgroup.WithContext(ctx)

	if rt.azure != nil {
		receiver, err := rt.azure.NewReceiver(cfg.Azure.ImportQueue)
		if err != nil {
			return err
		}
		processor := messaging.NewImportProcessor(rt.services.Lots, rt.services.Users)
		consumer := messaging.NewConsumer(receiver, processor, rt.metrics)

		g.Go(func() error {
			log.Info().Str("queue", cfg.Azure.ImportQueue).Msg("Starting Azure Service Bus consumer")
			return consumer.Run(ctx)
		})
	} else {
		log.Warn().Msg("Azure Service Bus not configured, lot imports will only arrive over HTTP")
	}

	g.Go(func() error {
		interval := cfg.Worker.ReconcileInterval
		if interval <= 0 {
			interval = time.Minute
		}
		log.Info().Dur("interval", interval).Msg("Starting activity projection job")

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() {
				rt.checkHealth(ctx)
				if err := rt.services.Projections.Reconcile(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to project activity events")
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}

		scheduler.Start()
		<-ctx.Done()
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
