package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

// console prints user notifications and navigation to a terminal. Actions
// finish on background goroutines, so writes are serialized.
type console struct {
	mu   sync.Mutex
	out  io.Writer
	next string
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

// Notify implements port.Notifier
func (c *console) Notify(n port.UserNotification) {
	c.printf("[%s] %s\n", n.Level, n.Message)
}

// Navigate implements port.Navigator. The CLI has no screen to switch, so it
// remembers the destination and tells the user.
func (c *console) Navigate(viewName string) {
	c.mu.Lock()
	c.next = viewName
	c.mu.Unlock()
	c.printf("next view: %s\n", viewName)
}

// NextView returns the last navigation target
func (c *console) NextView() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// renderPage writes the view title, one row per claim and the page footer
func (c *console) renderPage(proj *view.Projection, page query.Page, params query.Params) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%s\n", proj.Title)

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTAFF\tPROJECT\tPERIOD\tHOURS\tSTATUS\tREASON")
	for _, cl := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			cl.ID, cl.StaffName, cl.ProjectName, cl.Period,
			strconv.FormatFloat(cl.Hours, 'f', -1, 64), cl.Status, reasonOf(cl))
	}
	_ = tw.Flush()

	if page.Total == 0 {
		fmt.Fprintln(c.out, "(no claims)")
	}
	fmt.Fprintf(c.out, "page %d/%d, %d claim(s)", page.Number, page.TotalPages, page.Total)
	if enc := params.Values().Encode(); enc != "" {
		fmt.Fprintf(c.out, "  ?%s", enc)
	}
	fmt.Fprintln(c.out)
	if labels := actionLabels(proj); labels != "" {
		fmt.Fprintf(c.out, "actions: %s\n", labels)
	}
}

func (c *console) renderNotifications(items []*entity.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(items) == 0 {
		fmt.Fprintln(c.out, "(inbox empty)")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLAIM\tWHEN\tREAD\tMESSAGE")
	for _, n := range items {
		read := "no"
		if n.ReadAt != nil {
			read = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			n.ID, n.ClaimID, n.CreatedAt.Local().Format("2006-01-02 15:04"), read, n.Message)
	}
	_ = tw.Flush()
}

// reasonOf shows the approver's reason once a decision was made
func reasonOf(c *entity.Claim) string {
	if c.ReasonApprover != "" {
		return c.ReasonApprover
	}
	return c.ReasonClaimer
}

func actionLabels(p *view.Projection) string {
	parts := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		parts = append(parts, fmt.Sprintf("%s (%s)", a, p.Labels[a]))
	}
	return strings.Join(parts, ", ")
}
