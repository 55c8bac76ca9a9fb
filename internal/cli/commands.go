package cli

import (
	"fmt"
	"strconv"
	"time"

	"viralclip/internal/database"
	"viralclip/internal/model"
	"viralclip/internal/pgmq"
	"viralclip/internal/repository"
	"viralclip/internal/service"
	"viralclip/internal/util"

	"github.com/spf13/cobra"
)

func newMigrateCommand(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and create the render queues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := database.OpenPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := repository.Migrate(ctx, pool); err != nil {
				return err
			}

			db, err := database.OpenSQL(ctx, cfg, database.DriverPQ)
			if err != nil {
				return err
			}
			defer db.Close()
			queues := pgmq.New(db)
			for _, q := range []string{cfg.RenderQueueName, cfg.RenderDeadLetterQueueName} {
				if err := queues.CreateQueue(ctx, q); err != nil {
					return err
				}
			}
			env.logger.Info().Str("queue", cfg.RenderQueueName).Str("dlq", cfg.RenderDeadLetterQueueName).Msg("Schema and queues ready")
			return nil
		},
	}
}

func newTierCommand(env *cliEnv) *cobra.Command {
	tier := &cobra.Command{Use: "tier", Short: "Inspect or change a user's tier"}

	withService := func(cmd *cobra.Command, fn func(service.SubscriptionService) error) error {
		cfg, err := env.config()
		if err != nil {
			return err
		}
		pool, err := database.OpenPool(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		return fn(service.NewSubscriptionService(repository.NewTierRepo(pool), repository.NewUserRepo(pool), env.logger))
	}

	tier.AddCommand(&cobra.Command{
		Use:   "get <user-id>",
		Short: "Print the user's tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc service.SubscriptionService) error {
				t, err := svc.GetTier(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), t)
				return nil
			})
		},
	})
	tier.AddCommand(&cobra.Command{
		Use:   "set <user-id> <lite|pro>",
		Short: "Change the user's tier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := model.Tier(args[1])
			if !t.Valid() {
				return fmt.Errorf("unknown tier %q: %w", args[1], service.ErrInvalidTier)
			}
			return withService(cmd, func(svc service.SubscriptionService) error {
				ut, err := svc.SetTier(cmd.Context(), args[0], t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ut.UserID, ut.Tier)
				return nil
			})
		},
	})
	return tier
}

func newRenderCommand(env *cliEnv) *cobra.Command {
	render := &cobra.Command{Use: "render", Short: "Manage clip renders"}

	enqueue := &cobra.Command{
		Use:   "enqueue <clip-id>",
		Short: "Queue a render for a clip on behalf of its owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clipID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid clip id %q", args[0])
			}
			cfg, err := env.config()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := database.OpenPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			db, err := database.OpenSQL(ctx, cfg, database.DriverPQ)
			if err != nil {
				return err
			}
			defer db.Close()

			clips := repository.NewClipRepo(pool)
			clip, err := clips.GetClipByID(ctx, clipID)
			if err != nil {
				return err
			}
			if clip == nil {
				return service.ErrClipNotFound
			}

			var withSubtitles *bool
			if cmd.Flags().Changed("subtitles") {
				v, _ := cmd.Flags().GetBool("subtitles")
				withSubtitles = &v
			}
			svc := service.NewClipService(service.ClipServiceDeps{
				Clips:   clips,
				Renders: repository.NewRenderRepo(pool),
				Prefs:   repository.NewPreferencesRepo(pool),
				Queue:   service.NewRenderQueue(pgmq.New(db), cfg.RenderQueueName),
			}, env.logger)
			r, err := svc.RequestRender(ctx, clip.UserID, clipID, withSubtitles)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "render %d queued for clip %d (subtitles=%t)\n", r.ID, r.ClipID, r.WithSubtitles)
			return nil
		},
	}
	enqueue.Flags().Bool("subtitles", true, "Embed title/description captions (defaults to the owner's preference)")
	render.AddCommand(enqueue)
	return render
}

func newDLQCommand(env *cliEnv) *cobra.Command {
	dlq := &cobra.Command{Use: "dlq", Short: "Inspect dead-lettered render jobs"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List unprocessed dead letters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			db, err := database.OpenSQL(cmd.Context(), cfg, database.DriverPQ)
			if err != nil {
				return err
			}
			defer db.Close()
			msgs, err := repository.NewDLQRepository(db).ListUnprocessed(cmd.Context(), cfg.RenderQueueName, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range msgs {
				reason := ""
				if m.Error != nil {
					reason = *m.Error
				}
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", m.ID, m.MessageID, m.CreatedAt.Format(time.RFC3339), reason)
			}
			return nil
		},
	}
	list.Flags().Int("limit", 50, "Maximum rows to print")
	dlq.AddCommand(list)
	return dlq
}

func newTokenCommand(env *cliEnv) *cobra.Command {
	token := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign an HS256 bearer token for local development",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			tok, err := util.IssueHS256(cfg.JWTSecret, args[0], name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	token.Flags().String("name", "", "Display name claim")
	token.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return token
}
