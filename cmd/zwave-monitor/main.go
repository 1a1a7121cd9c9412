// Command zwave-monitor opens a driver against a Z-Wave controller and
// prints every notification it posts, matching original_source's MinOZW
// example: create the driver, register a callback, then just wait while
// the driver thread does the discovery and querying.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-zwave/zwave/driver"
	"github.com/go-zwave/zwave/notify"
)

func main() {
	transportFlag := flag.String("transport", "serial:/dev/ttyUSB0", "transport URI (serial:<path>, tcp:<host:port>, noise+tcp:<host:port>)")
	configFlag := flag.String("config", "", "path to a persisted network snapshot (read on start, written on shutdown)")
	userFlag := flag.String("user-path", "", "path for user-editable overrides (manufacturer specific db, etc.)")
	pollFlag := flag.Duration("poll-period", 5*time.Second, "interval between polling thread ticks")
	verboseFlag := flag.Bool("v", false, "enable driver logging")
	flag.Parse()

	cfg := driver.DefaultConfig()
	cfg.ConfigPath = *configFlag
	cfg.UserPath = *userFlag
	cfg.PollPeriod = *pollFlag

	d := driver.New(cfg)
	if *verboseFlag {
		d.LogMode(true)
	}

	d.RegisterWatcher(onNotification)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Open(ctx, *transportFlag); err != nil {
		log.Fatalf("zwave-monitor: open %s: %v", *transportFlag, err)
	}
	defer d.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	fmt.Printf("zwave-monitor: received %s, shutting down\n", sig)

	if cfg.ConfigPath != "" {
		if err := d.WriteConfig(); err != nil {
			log.Printf("zwave-monitor: write config: %v", err)
		}
	}
}

func onNotification(n notify.Notification) {
	fmt.Printf("[%s] home=0x%08x node=%d value=%v %s\n", n.Kind, n.HomeID, n.NodeID, n.ValueID, n.Detail)
}
