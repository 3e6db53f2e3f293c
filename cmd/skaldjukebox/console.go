package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/friendsincode/skald_jukebox/internal/models"
	"github.com/friendsincode/skald_jukebox/internal/scheduler"
)

const consoleHelp = `commands:
  <enter>   play the next track
  <number>  move that queue position to the front
  y         play the next YouTube track
  s         play the next Spotify track
  x         stop playback
  space     pause or resume
  r         refresh the player
  shuffle   shuffle the queue
  p         print the queue
  h         this help
  q         quit`

// runConsole runs the interactive stdin loop until the user quits or the
// context is cancelled.
func runConsole(ctx context.Context, sched *scheduler.Service) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		close(lines)
	}()

	fmt.Println(consoleHelp)

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return
		case line, ok = <-lines:
			if !ok {
				return
			}
		}

		// A raw space toggles pause; trimming would erase it.
		if line == " " {
			if !sched.PauseResume() {
				fmt.Println("nothing is playing")
			}
			continue
		}

		cmd := strings.ToLower(strings.TrimSpace(line))
		switch cmd {
		case "q", "quit", "exit":
			return
		case "h", "help":
			fmt.Println(consoleHelp)
		case "p":
			printQueue(sched)
		case "x":
			sched.Stop()
		case "r":
			sched.Refresh()
		case "shuffle":
			sched.Shuffle()
			fmt.Println("queue shuffled")
		case "y":
			advanceFrom(sched, models.PlatformYouTube)
		case "s":
			advanceFrom(sched, models.PlatformSpotify)
		case "":
			if err := sched.Advance(); err != nil {
				fmt.Println(err)
			}
		default:
			if index, err := strconv.Atoi(cmd); err == nil {
				// Queue positions are shown one-based.
				if !sched.MoveToFront(index - 1) {
					fmt.Printf("no track at position %d\n", index)
				}
				continue
			}
			fmt.Printf("unknown command %q (h for help)\n", cmd)
		}
	}
}

func advanceFrom(sched *scheduler.Service, platform models.Platform) {
	if err := sched.AdvanceFrom(platform); err != nil {
		fmt.Printf("nothing to play from %s\n", platform)
	}
}

func printQueue(sched *scheduler.Service) {
	if now, phase := sched.NowPlaying(); now.URL != "" {
		fmt.Printf("now (%s): %s\n", phase, describe(now))
	}
	queue := sched.QueueSnapshot()
	if len(queue) == 0 {
		fmt.Println("queue is empty")
		return
	}
	for i, track := range queue {
		fmt.Printf("%3d. %s\n", i+1, describe(track))
	}
}

func describe(t models.Track) string {
	s := t.Title
	if t.Artist != "" {
		s += " - " + t.Artist
	}
	s += fmt.Sprintf(" [%s]", t.Platform)
	if cfg.ShowAdder && t.Adder() != "" {
		s += " (added by " + t.Adder() + ")"
	}
	return s
}
