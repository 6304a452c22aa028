package command

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/errors"
)

// ParseProgram reads a line-oriented command file:
//
//	ORBIT <altitude> <raan> <inclination>
//	MAKE PHOTO
//	ADD ZONE <id> <lat1> <lon1> <lat2> <lon2>
//	REMOVE ZONE <id>
//
// Blank lines and lines starting with '#' are skipped. Any syntax error
// aborts the entire load: no partial program is ever returned.
func ParseProgram(r io.Reader) ([]Command, error) {
	var commands []Command

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cmd, err := parseLine(line)
		if err != nil {
			return nil, errors.WrapFatal(err, "ParseProgram", "parseLine",
				fmt.Sprintf("line %d: %s", lineNum, line))
		}
		commands = append(commands, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapFatal(err, "ParseProgram", "Scan", "program read")
	}

	return commands, nil
}

func parseLine(line string) (Command, error) {
	parts := strings.Fields(line)

	switch {
	case line == config.CmdMakePhoto:
		return Command{Name: config.CmdMakePhoto}, nil

	case parts[0] == "ORBIT" && len(parts) == 4:
		args, err := parseFloats(parts[1:])
		if err != nil {
			return Command{}, err
		}
		return Command{Name: config.CmdOrbit, Args: args}, nil

	case parts[0] == "ADD" && len(parts) == 7 && parts[1] == "ZONE":
		id, err := strconv.Atoi(parts[2])
		if err != nil {
			return Command{}, fmt.Errorf("%w: zone id %q", errors.ErrProgramSyntax, parts[2])
		}
		box, err := parseFloats(parts[3:])
		if err != nil {
			return Command{}, err
		}
		return Command{Name: config.CmdAddZone, Args: append([]float64{float64(id)}, box...)}, nil

	case parts[0] == "REMOVE" && len(parts) == 3 && parts[1] == "ZONE":
		id, err := strconv.Atoi(parts[2])
		if err != nil {
			return Command{}, fmt.Errorf("%w: zone id %q", errors.ErrProgramSyntax, parts[2])
		}
		return Command{Name: config.CmdRemoveZone, Args: []float64{float64(id)}}, nil

	default:
		return Command{}, errors.ErrProgramSyntax
	}
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", errors.ErrProgramSyntax, f)
		}
		out[i] = v
	}
	return out, nil
}
