package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/PaulFidika/donorkit/badge"
	"github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/fatih/color"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	okColor   = color.New(color.FgHiGreen, color.Bold)
	errColor  = color.New(color.FgHiRed)
	noteColor = color.New(color.FgHiMagenta)
)

// terminalNotifier prints notices in place of a browser alert.
type terminalNotifier struct{ w io.Writer }

func (n terminalNotifier) Notify(ctx context.Context, notice core.Notice) error {
	c := okColor
	if notice.Kind == core.NoticeInvalidCode {
		c = errColor
	}
	_, err := c.Fprintln(n.w, notice.Message)
	return err
}

// logNavigator records where a browser would have been sent.
type logNavigator struct{}

func (logNavigator) Navigate(ctx context.Context, destination string) error {
	log.WithField("destination", destination).Debug("continue at landing page")
	return nil
}

// terminalRenderer prints the badge line, or nothing when there is no
// entitlement.
type terminalRenderer struct{ w io.Writer }

func (r terminalRenderer) Render(ctx context.Context, rec *entitlements.Record) error {
	if rec == nil {
		return nil
	}
	_, err := noteColor.Fprintln(r.w, badge.Text(ctx, rec))
	return err
}

// newService wires the terminal ports around an opened backend.
func newService(cfg Config, b *backend, w io.Writer, opts ...core.Option) (*core.Service, error) {
	sc, err := cfg.serviceConfig()
	if err != nil {
		return nil, err
	}
	base := []core.Option{
		core.WithLogger(log),
		core.WithEventLogger(core.LogrusEventLogger{Log: log}),
		core.WithNotifier(terminalNotifier{w: w}),
		core.WithNavigator(logNavigator{}),
		core.WithRenderer(terminalRenderer{w: w}),
	}
	return core.NewService(sc, b.store, append(base, opts...)...), nil
}

func describe(w io.Writer, rec *entitlements.Record) {
	if rec == nil {
		errColor.Fprintln(w, "no active entitlement")
		return
	}
	fmt.Fprintf(w, "%s  %s\n", okColor.Sprint(rec.TypeName), rec.Code)
	fmt.Fprintf(w, "  prints left: %d\n", rec.PrintCount)
	fmt.Fprintf(w, "  activated:   %s\n", time.UnixMilli(rec.ActivatedAt).Local().Format(timeLayout))
	fmt.Fprintf(w, "  expires:     %s\n", rec.ExpiresAt().Local().Format(timeLayout))
}
