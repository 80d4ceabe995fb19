package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/application/export"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/application/workflow"
	"github.com/garyjia/claimflow/internal/infrastructure/worker"
)

// viewFlags is the command-line form of the shareable view state
type viewFlags struct {
	raw    string
	status string
	search string
	field  string
	from   string
	to     string
	sort   string
	desc   bool
	page   int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.raw, "query", "", "view state as a query string, e.g. \"status=Pending&sort=hours&dir=desc\"")
	fl.StringVar(&f.status, "status", "", "status filter (All for none)")
	fl.StringVar(&f.search, "search", "", "search term")
	fl.StringVar(&f.field, "field", "", "search field: all, id, staff, project, status")
	fl.StringVar(&f.from, "from", "", "period start lower bound (YYYY-MM-DD)")
	fl.StringVar(&f.to, "to", "", "period start upper bound (YYYY-MM-DD)")
	fl.StringVar(&f.sort, "sort", "", "sort key: id, staffName, projectName, period, hours, status")
	fl.BoolVar(&f.desc, "desc", false, "sort descending")
	fl.IntVar(&f.page, "page", 0, "page number")
}

// params decodes --query first and lets the individual flags override it
func (f *viewFlags) params() (query.Params, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(f.raw, "?"))
	if err != nil {
		return query.Params{}, fmt.Errorf("invalid --query: %w", err)
	}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set(query.ParamStatus, f.status)
	set(query.ParamSearchTerm, f.search)
	set(query.ParamSearchField, f.field)
	set(query.ParamDateFrom, f.from)
	set(query.ParamDateTo, f.to)
	set(query.ParamSort, f.sort)
	if f.desc {
		v.Set(query.ParamDirection, string(query.Desc))
	}
	if f.page > 0 {
		v.Set(query.ParamPage, strconv.Itoa(f.page))
	}
	return query.FromValues(v), nil
}

func newViewsCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the views available to your role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", a.actor.DisplayName, a.actor.Role)
			for _, p := range a.views.For(a.actor) {
				fmt.Fprintf(out, "  %-10s %s", p.Name, p.Title)
				if labels := actionLabels(p); labels != "" {
					fmt.Fprintf(out, "  [%s]", labels)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newViewCommand(appFn func() *app) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "view [name]",
		Short: "Show one page of a view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			params, err := flags.params()
			if err != nil {
				return err
			}

			orch, err := a.openView(argOr(args, 0))
			if err != nil {
				return err
			}
			defer orch.Close()

			session := orch.Session()
			session.SetParams(params)
			if err := session.Load(cmd.Context()); err != nil {
				return err
			}

			a.console.renderPage(session.Projection(), session.Rows(), session.Params())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newActCommand(appFn func() *app) *cobra.Command {
	var (
		viewName string
		reason   string
		yes      bool
	)
	cmd := &cobra.Command{
		Use:   "act <submit|cancel|approve|reject|pay> <id>...",
		Short: "Move claims to a new status",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx := cmd.Context()

			action, ok := view.ParseAction(args[0])
			if !ok || !action.ChangesStatus() {
				return fmt.Errorf("unknown action %q", args[0])
			}
			if viewName == "" {
				name, err := a.viewFor(action)
				if err != nil {
					return err
				}
				viewName = name
			}

			orch, err := a.openView(viewName)
			if err != nil {
				return err
			}
			defer orch.Close()

			if err := orch.Session().Load(ctx); err != nil {
				return err
			}

			pending, err := orch.Request(action, args[1:]...)
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if !yes {
				answer, err := ask(in, out, pending.Prompt+" [y/N] ")
				if err != nil {
					return err
				}
				if ans := strings.ToLower(answer); ans != "y" && ans != "yes" {
					orch.Cancel()
					fmt.Fprintln(out, "cancelled")
					return nil
				}
				target, _ := action.Target()
				if workflow.ReasonRequired(target) && strings.TrimSpace(reason) == "" {
					if reason, err = ask(in, out, "reason: "); err != nil {
						return err
					}
				}
			}

			outcomes, err := orch.Confirm(ctx, reason)
			if err != nil {
				return err
			}
			result := <-outcomes
			orch.Wait()

			if result.Err != nil {
				return result.Err
			}
			if result.ReconcileErr != nil {
				a.logger.Warn("Refresh after action failed", zap.Error(result.ReconcileErr))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&viewName, "view", "", "view to act from (defaults to the first view offering the action)")
	cmd.Flags().StringVar(&reason, "reason", "", "decision reason (required to approve or reject)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newDownloadCommand(appFn func() *app) *cobra.Command {
	var (
		flags    viewFlags
		viewName string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "download [id]...",
		Short: "Export the selected claims, or the whole filtered view",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx := cmd.Context()

			exporter, err := a.exporters.Get(format)
			if err != nil {
				return err
			}
			params, err := flags.params()
			if err != nil {
				return err
			}
			if viewName == "" {
				if viewName, err = a.viewFor(view.ActionDownload); err != nil {
					return err
				}
			}

			orch, err := a.openView(viewName)
			if err != nil {
				return err
			}
			defer orch.Close()

			session := orch.Session()
			session.SetParams(params)
			if err := session.Load(ctx); err != nil {
				return err
			}

			name := a.files.UniqueName(ctx, export.Filename(string(session.Projection().Name), exporter))
			w, err := a.files.Create(ctx, name)
			if err != nil {
				return err
			}
			n, err := orch.Download(ctx, exporter, w, args...)
			if closeErr := w.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %d claim(s) to %s\n", n, a.files.GetFullPath(name))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&viewName, "view", "", "view to export from")
	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx or pdf")
	return cmd
}

func newWatchCommand(appFn func() *app) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "watch [name]",
		Short: "Keep a view and your inbox refreshed until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx := cmd.Context()

			params, err := flags.params()
			if err != nil {
				return err
			}
			orch, err := a.openView(argOr(args, 0))
			if err != nil {
				return err
			}
			defer orch.Close()

			session := orch.Session()
			session.SetParams(params)

			refresh := func(ctx context.Context) error {
				if err := session.Reconcile(ctx); err != nil {
					return err
				}
				a.console.renderPage(session.Projection(), session.Rows(), session.Params())
				return nil
			}

			seen := make(map[int64]struct{})
			pollInbox := func(ctx context.Context) error {
				items, err := a.inbox.Notifications(ctx, true)
				if err != nil {
					return err
				}
				for _, n := range items {
					if _, ok := seen[n.ID]; ok {
						continue
					}
					seen[n.ID] = struct{}{}
					a.console.printf("[info] %s\n", n.Message)
				}
				return nil
			}

			workers := worker.NewManager(a.logger)
			workers.Register(worker.NewPoller("view-refresh", a.cfg.Client.PollInterval, refresh, a.logger))
			workers.Register(worker.NewPoller("inbox", a.cfg.Client.NotificationPoll, pollInbox, a.logger))

			if err := workers.StartAll(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return workers.StopAll()
		},
	}
	flags.register(cmd)
	return cmd
}

func newNotificationsCommand(appFn func() *app) *cobra.Command {
	var (
		all      bool
		markRead bool
	)
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show status-change messages about your claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			ctx := cmd.Context()

			items, err := a.inbox.Notifications(ctx, !all)
			if err != nil {
				return err
			}
			a.console.renderNotifications(items)

			if markRead && len(items) > 0 {
				n, err := a.inbox.MarkRead(ctx, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "marked %d read\n", n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include messages already read")
	cmd.Flags().BoolVar(&markRead, "mark-read", false, "mark every unread message read")
	return cmd
}

// ask prints a prompt and returns the trimmed answer line
func ask(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func argOr(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
