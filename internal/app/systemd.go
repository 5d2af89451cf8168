package app

import (
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog/log"
)

// SystemdNotifier reports readiness and liveness to systemd. Outside a
// notify-type unit every call is a no-op.
type SystemdNotifier struct{}

func (SystemdNotifier) Ready() error {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if sent {
		if interval, werr := daemon.SdWatchdogEnabled(false); werr == nil && interval > 0 {
			log.Info().Dur("watchdog", interval).Msg("Systemd watchdog enabled")
		}
	}
	return err
}

func (SystemdNotifier) Alive() error {
	_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
	return err
}
