package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/libs/db"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/grpcapi"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/migrations"
)

type Context struct {
	Addr    string
	Timeout time.Duration
	Out     io.Writer
}

func (c *Context) client() (*grpcapi.Client, error) {
	return grpcapi.NewClient(c.Addr)
}

func (c *Context) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Timeout)
}

type MigrateCmd struct {
	DatabaseURL string `help:"Postgres connection string." env:"DATABASE_URL" required:""`
}

func (m *MigrateCmd) Run(c *Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	pool, err := db.Open(ctx, m.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()
	version, err := db.Migrate(ctx, pool, migrations.FS, ".")
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "schema at version %d\n", version)
	return nil
}

type WindowsCmd struct {
	Date string `arg:"" help:"Date as YYYY-MM-DD."`
}

func (w *WindowsCmd) Run(c *Context) error {
	client, err := c.client()
	if err != nil {
		return err
	}
	defer client.Close()
	ctx, cancel := c.callCtx()
	defer cancel()

	day, err := client.WindowsFor(ctx, w.Date)
	if err != nil {
		return err
	}
	if day.IsClosed {
		fmt.Fprintf(c.Out, "%s closed (%s)\n", day.Date, day.Source)
		return nil
	}
	parts := make([]string, 0, len(day.Windows))
	for _, win := range day.Windows {
		parts = append(parts, win.From+"-"+win.To)
	}
	fmt.Fprintf(c.Out, "%s %s (%s)\n", day.Date, strings.Join(parts, ", "), day.Source)
	return nil
}

type FreeSlotsCmd struct {
	Date     string `arg:"" help:"Date as YYYY-MM-DD."`
	Duration int    `help:"Appointment length in minutes; the server default when zero."`
}

func (f *FreeSlotsCmd) Run(c *Context) error {
	client, err := c.client()
	if err != nil {
		return err
	}
	defer client.Close()
	ctx, cancel := c.callCtx()
	defer cancel()

	slots, err := client.FreeSlots(ctx, f.Date, f.Duration)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(c.Out, "no free slots")
		return nil
	}
	fmt.Fprintln(c.Out, strings.Join(slots, " "))
	return nil
}

type CheckCmd struct {
	Start    string `arg:"" help:"Start as RFC3339, e.g. 2030-01-07T10:00:00+02:00."`
	Duration int    `help:"Appointment length in minutes." default:"30"`
}

func (k *CheckCmd) Run(c *Context) error {
	client, err := c.client()
	if err != nil {
		return err
	}
	defer client.Close()
	ctx, cancel := c.callCtx()
	defer cancel()

	ok, err := client.IsSlotAvailable(ctx, k.Start, k.Duration)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(c.Out, "available")
	} else {
		fmt.Fprintln(c.Out, "not available")
	}
	return nil
}

type FullyBookedCmd struct {
	Month int `help:"Month 1-12." required:""`
	Year  int `help:"Four digit year." required:""`
}

func (f *FullyBookedCmd) Run(c *Context) error {
	client, err := c.client()
	if err != nil {
		return err
	}
	defer client.Close()
	ctx, cancel := c.callCtx()
	defer cancel()

	days, err := client.FullyBookedDays(ctx, f.Month, f.Year)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "%d/%d fully booked: %v\n", f.Month, f.Year, days)
	return nil
}
