package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tammy-rb/siri-cosmetics-server/libs/config"
)

var CLI struct {
	Version kong.VersionFlag
	Addr    string        `help:"Address of the clinic gRPC API." default:"localhost:9090" env:"CLINIC_GRPC_ADDR"`
	Timeout time.Duration `help:"Per-call timeout." default:"5s"`

	Migrate     MigrateCmd     `cmd:"" help:"Apply pending database migrations."`
	Windows     WindowsCmd     `cmd:"" help:"Show the opening windows of a date."`
	FreeSlots   FreeSlotsCmd   `cmd:"" name:"free-slots" help:"List bookable slot starts of a date."`
	Check       CheckCmd       `cmd:"" help:"Check whether a slot can be booked."`
	FullyBooked FullyBookedCmd `cmd:"" name:"fully-booked" help:"List fully booked days of a month."`
}

func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ctx := kong.Parse(&CLI,
		kong.Name("clinicctl"),
		kong.Description("Operator tool for the clinic scheduling service"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	appCtx := &Context{Addr: CLI.Addr, Timeout: CLI.Timeout, Out: os.Stdout}
	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
