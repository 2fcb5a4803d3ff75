package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	dataprep "lantern/internal/dataprep/domain"
)

type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// asker re-prompts until the answer is valid. Errors from the reader
// (EOF, interrupt) end the session.
type asker struct {
	in  lineReader
	out io.Writer
}

func (a asker) ask(prompt string) (string, error) {
	a.in.SetPrompt(prompt)
	line, err := a.in.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a asker) askInt(prompt string, min, max int) (int, error) {
	for {
		line, err := a.ask(prompt)
		if err != nil {
			return 0, err
		}
		value, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(a.out, "Invalid input! Please enter a valid number.")
			continue
		}
		if value < min || value > max {
			fmt.Fprintf(a.out, "Please enter a number between %d and %d.\n", min, max)
			continue
		}
		return value, nil
	}
}

func (a asker) askSeason(prompt string) (dataprep.Season, error) {
	for {
		line, err := a.ask(prompt)
		if err != nil {
			return "", err
		}
		season, err := dataprep.ParseSeason(line)
		if err != nil {
			fmt.Fprintln(a.out, "Please enter a season of (sum/win/aut/spr).")
			continue
		}
		return season, nil
	}
}

func (a asker) askBool(prompt string) (bool, error) {
	for {
		line, err := a.ask(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(a.out, "Please enter y or n.")
	}
}

type answers struct {
	CommunitySize int
	Season        dataprep.Season
	PVPercentage  int
	SDPercentage  int
	WithBattery   bool
}

func (a asker) collect() (answers, error) {
	var out answers
	var err error
	if out.CommunitySize, err = a.askInt(fmt.Sprintf("Size of LEC (%d-%d)? ", dataprep.MinCommunitySize, dataprep.MaxCommunitySize), dataprep.MinCommunitySize, dataprep.MaxCommunitySize); err != nil {
		return out, err
	}
	if out.Season, err = a.askSeason("Season (sum/win/aut/spr)? "); err != nil {
		return out, err
	}
	if out.PVPercentage, err = a.askInt("Percentage of buildings with PV (0-100)? ", dataprep.MinPercentage, dataprep.MaxPercentage); err != nil {
		return out, err
	}
	if out.SDPercentage, err = a.askInt("Percentage of buildings with Smart Devices (0-100)? ", dataprep.MinPercentage, dataprep.MaxPercentage); err != nil {
		return out, err
	}
	if out.WithBattery, err = a.askBool("With battery (y/n)? "); err != nil {
		return out, err
	}
	return out, nil
}
