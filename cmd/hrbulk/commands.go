package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/async"
	"github.com/joseph-ayodele/hr-bulk/internal/cleaning"
	"github.com/joseph-ayodele/hr-bulk/internal/entity"
	"github.com/joseph-ayodele/hr-bulk/internal/ingest"
	"github.com/joseph-ayodele/hr-bulk/internal/inspect"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/pipeline"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := repository.Migrate(cmd.Context(), a.store, a.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func employerCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employer",
		Short: "Manage employers (tenants)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Create an employer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			e, err := a.repos.Employers.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "employer %d created: %s\n", e.ID, e.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List employers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			all, err := a.repos.Employers.List(cmd.Context())
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), all)
			}
			for _, e := range all {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", e.ID, e.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(adminAddCmd(g))
	return cmd
}

func adminAddCmd(g *globalFlags) *cobra.Command {
	var (
		employerID int64
		first      string
		last       string
		mobile     string
		role       string
	)
	cmd := &cobra.Command{
		Use:   "add-admin",
		Short: "Create an employee who can run bulk operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			phone := cleaning.NewPhoneCleaner(a.cfg.Pipeline.PhoneRegion).Clean(mobile)
			if !phone.OK {
				return fmt.Errorf("mobile: %s", phone.Reason)
			}
			id, err := a.repos.Sequences.Reserve(ctx, repository.SequenceEmployees, 1)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			emp := &entity.Employee{
				ID:           id,
				UUID:         uuid.NewString(),
				EmployerID:   employerID,
				FirstName:    first,
				LastName:     last,
				MobileNumber: phone.Value,
				Role:         role,
				Status:       string(constants.EmployeeStatusActive),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			err = a.store.Tx(ctx, func(tx repository.DB) error {
				repos := repository.NewRepositories(tx, a.logger)
				if err := repos.Employees.Create(ctx, emp); err != nil {
					return err
				}
				return repos.Relationships.AddWorksFor(ctx, emp.ID, employerID, now)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %d created (%s, employer %d)\n", emp.ID, role, employerID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&employerID, "employer", 0, "Employer id")
	cmd.Flags().StringVar(&first, "first", "", "First name")
	cmd.Flags().StringVar(&last, "last", "", "Last name")
	cmd.Flags().StringVar(&mobile, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&role, "role", string(constants.RoleHRAdmin), "Role (hr_admin, hr_manager, hr_viewer, employee)")
	_ = cmd.MarkFlagRequired("employer")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("mobile")
	return cmd
}

func inspectCmd(g *globalFlags) *cobra.Command {
	var opName string
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Profile a file and suggest column mappings without touching the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			a := &app{cfg: cfg, logger: newLogger(cfg.Log, cmd.ErrOrStderr())}
			dicts, err := a.dictionaries()
			if err != nil {
				return err
			}

			op, err := resolveOperation(opName, args[0], dicts)
			if err != nil {
				return err
			}
			rep := inspect.NewInspector(a.matcher(dicts.For(op)), a.logger).Inspect(cmd.Context(), args[0])
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderInspection(op, rep))
			if !rep.Success {
				return errors.New(rep.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opName, "operation", "", "import_employees or update_managers (default: detect)")
	return cmd
}

// resolveOperation parses name, or detects the operation from the file when name is empty.
// Detection failures fall back to an employee import.
func resolveOperation(name, path string, dicts matching.Dictionaries) (constants.Operation, error) {
	if name != "" {
		op, ok := constants.ParseOperation(name)
		if !ok {
			return "", fmt.Errorf("unknown operation %q", name)
		}
		return op, nil
	}
	op, err := pipeline.DetectOperation(path, dicts)
	if err != nil {
		return constants.OperationImportEmployees, nil
	}
	return op, nil
}

func runCmd(g *globalFlags, use, short string, op constants.Operation) *cobra.Command {
	var adminID, employerID int64
	cmd := &cobra.Command{
		Use:   use + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			bulk, err := a.bulk()
			if err != nil {
				return err
			}
			out, err := bulk.Run(ctx, pipeline.Request{
				Operation:  op,
				FilePath:   args[0],
				AdminID:    adminID,
				EmployerID: employerID,
			})
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"summary":   out.Summary,
					"artifacts": out.Artifacts.Paths(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(out.Summary, out.Artifacts.Paths()))
			return nil
		},
	}
	cmd.Flags().Int64Var(&adminID, "admin", 0, "Id of the admin running the operation")
	cmd.Flags().Int64Var(&employerID, "employer", 0, "Employer id (default: the admin's employer)")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}

func watchCmd(g *globalFlags) *cobra.Command {
	var (
		inbox       string
		adminID     int64
		force       bool
		initialScan bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch <inbox>/<employer_id>/ for files and run them through the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if inbox == "" {
				inbox = a.cfg.Watch.InboxDir
			}
			if adminID == 0 {
				adminID = a.cfg.Watch.AdminID
			}
			if adminID == 0 {
				return errors.New("an admin id is required (--admin or WATCH_ADMIN_ID)")
			}

			bulk, err := a.bulk()
			if err != nil {
				return err
			}
			runner := pipeline.NewUploadRunner(bulk, a.repos.Uploads, adminID, a.logger)
			queue := async.NewProcessorQueue(runner, a.logger,
				async.WithWorkers(a.cfg.Watch.Workers),
				async.WithProcessTimeout(a.cfg.Watch.Timeout),
			)
			defer queue.Shutdown(context.Background())

			dispatcher := ingest.NewDispatcher(ingest.NewStager(a.repos.Employers, a.repos.Uploads, a.logger), queue, inbox, a.logger)
			dispatcher.Force = force || a.cfg.Watch.Force

			paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       []string{inbox},
				InitialScan: initialScan,
				SkipHidden:  true,
				Debounce:    a.cfg.Watch.Debounce,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}

			if addr := a.cfg.Metrics.Addr; addr != "" {
				srv := &http.Server{Addr: addr, Handler: metricsMux(a), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.logger.Error("metrics server failed", "addr", addr, "error", err)
					}
				}()
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(sctx)
				}()
				a.logger.Info("metrics listening", "addr", addr)
			}

			a.logger.Info("hrbulk watching", "inbox", inbox, "admin_id", adminID, "workers", a.cfg.Watch.Workers)
			dispatcher.Run(ctx, paths, errs)
			return nil
		},
	}
	cmd.Flags().StringVar(&inbox, "inbox", "", "Inbox directory (default WATCH_INBOX_DIR)")
	cmd.Flags().Int64Var(&adminID, "admin", 0, "Admin id uploads run as (default WATCH_ADMIN_ID)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-run files whose content was already staged")
	cmd.Flags().BoolVar(&initialScan, "initial-scan", true, "Process files already in the inbox at startup")
	return cmd
}

func metricsMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.healthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func healthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Ping the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.healthCheck(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
