package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dotcommander/retold/internal/domain/story"
)

const builtinKeyword = "cinderella"

// minRawSourceLength is the length above which a --source value that is not
// a file is taken as the story itself.
const minRawSourceLength = 50

const cinderella = `
Once upon a time, there was a young girl named Cinderella. She lived with her
wicked stepmother and two ugly stepsisters who treated her like a servant.
One day, the King announced a grand ball to find a bride for the Prince.
Cinderella wanted to go, but her stepfamily forbade it and ruined her dress.

A Fairy Godmother appeared and transformed a pumpkin into a carriage, mice
into horses, and her rags into a beautiful gown with glass slippers. She
warned Cinderella the magic would end at midnight.

At the ball, the Prince fell in love with her. They danced all night. As the
clock struck twelve, she fled, losing one glass slipper.

The Prince searched the kingdom. The stepsisters tried to force the shoe on,
but it only fit Cinderella. The Prince recognized her, they married, and
lived happily ever after.
`

// InvalidSourceError is returned when --source is neither a file, the
// built-in keyword, nor long enough to be a story.
type InvalidSourceError struct {
	Source string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("%q is not a readable file, the %q keyword, or story text longer than %d characters",
		e.Source, builtinKeyword, minRawSourceLength)
}

// loadSource resolves --source to story text. A path to an existing file
// wins, then the built-in keyword, then raw text. The second return value
// describes where the text came from.
func loadSource(source string) (string, string, error) {
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		data, err := os.ReadFile(source)
		if err != nil {
			return "", "", fmt.Errorf("reading story file: %w", err)
		}
		return string(data), "file " + source, nil
	}

	if strings.EqualFold(source, builtinKeyword) {
		return cinderella, "built-in Cinderella story", nil
	}

	if len([]rune(source)) > minRawSourceLength {
		return source, "provided text", nil
	}

	return "", "", &InvalidSourceError{Source: source}
}

// errNoStyleChosen is returned when input ends before a valid choice.
var errNoStyleChosen = errors.New("no style chosen")

const chooseKeyword = "choose"

// resolveStyle returns arg unchanged unless it asks for the interactive menu.
func resolveStyle(arg string, in io.Reader, out io.Writer) (string, error) {
	if arg != "" && arg != chooseKeyword {
		return arg, nil
	}
	style, err := chooseStyle(in, out)
	if err != nil {
		return "", err
	}
	return string(style), nil
}

// chooseStyle shows the numbered style menu and reads choices until a valid
// one arrives. An empty line picks the first style.
func chooseStyle(in io.Reader, out io.Writer) (story.Style, error) {
	styles := story.Styles()

	fmt.Fprintln(out, "\nChoose output style:")
	fmt.Fprintln(out, strings.Repeat("-", 40))
	for i, s := range styles {
		fmt.Fprintf(out, "  %d. %-12s - %s\n", i+1, displayName(s), s.Description())
	}
	fmt.Fprintln(out, strings.Repeat("-", 40))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Enter choice (1-%d) [default: 1]: ", len(styles))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("reading style choice: %w", err)
			}
			return "", errNoStyleChosen
		}

		choice := strings.TrimSpace(scanner.Text())
		if choice == "" {
			choice = "1"
		}

		if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(styles) {
			selected := styles[n-1]
			fmt.Fprintf(out, "Selected: %s\n", displayName(selected))
			return selected, nil
		}
		fmt.Fprintf(out, "Invalid choice. Please enter a number from 1 to %d.\n", len(styles))
	}
}

func displayName(s story.Style) string {
	name := string(s)
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
