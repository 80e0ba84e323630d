package main

import (
	"context"
	"log"
	"os/exec"
	"runtime"
	"strings"

	"github.com/ayusman/isyarat/internal/app"
	"github.com/ayusman/isyarat/internal/tray"
)

// runTray shows the tray menu and mirrors engine events into it. It returns
// when the user quits from the menu or ctx ends.
func runTray(ctx context.Context, engine *app.App, addr string, quit func()) {
	t := tray.New()
	t.OnToggle(engine.SetEnabled)
	t.OnRecord(func(recording bool) {
		if recording {
			engine.StartRecording()
		} else {
			engine.StopRecording()
		}
	})
	t.OnSettings(func() { openBrowser(uiURL(addr)) })
	t.OnQuit(quit)

	events, unsubscribe := engine.Subscribe()
	defer unsubscribe()

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				t.SetStatus(e.Message)
				if e.Kind == app.EventTriggered && e.Source == app.SourceGesture {
					t.SetLastGesture(e.Subject)
				}
				t.SetEnabled(engine.IsEnabled())
				t.SetRecording(engine.Recording().Recording)
			}
		}
	}()

	t.Run()
}

func uiURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
