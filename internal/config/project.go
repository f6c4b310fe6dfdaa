package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/z80disasm/internal/options"
	"github.com/retroenv/z80disasm/internal/symbols"
)

var errMissingBinaryFile = errors.New("required parameter is missing")

// LoadProjectFile reads a project file and converts it to project settings.
func LoadProjectFile(path string) (options.Project, error) {
	file, err := os.Open(path)
	if err != nil {
		return options.Project{}, fmt.Errorf("opening project file: %w", err)
	}
	defer func() { _ = file.Close() }()

	props, err := ReadProject(file)
	if err != nil {
		return options.Project{}, fmt.Errorf("reading project file %s: %w", path, err)
	}
	return NewProject(props)
}

// NewProject converts the properties of a project file to project settings,
// unset keys keep their default value.
func NewProject(props *Properties) (options.Project, error) {
	binaryFile, ok, err := props.String(BinaryFile)
	if err != nil {
		return options.Project{}, err
	}
	if !ok || binaryFile == "" {
		return options.Project{}, &Error{Key: BinaryFile, Err: errMissingBinaryFile}
	}

	project := options.NewProject(binaryFile)
	steps := []func(*Properties, *options.Project) error{
		readBinaryRange,
		readFileNames,
		readLayout,
		readWindow,
		readSymbols,
		readFlags,
	}
	for _, step := range steps {
		if err := step(props, &project); err != nil {
			return options.Project{}, err
		}
	}

	project.ApplyDefaultFileNames()
	return project, nil
}

func readBinaryRange(props *Properties, project *options.Project) error {
	if err := readAddress(props, BinaryStart, &project.BinaryStart); err != nil {
		return err
	}
	if err := readAddress(props, BinaryEnd, &project.BinaryEnd); err != nil {
		return err
	}
	if project.BinaryStart > project.BinaryEnd {
		return &Error{Key: BinaryEnd, Line: props.Line(BinaryEnd, 0),
			Err: fmt.Errorf("end address 0x%04X is lower than start address 0x%04X", project.BinaryEnd, project.BinaryStart)}
	}
	return nil
}

func readFileNames(props *Properties, project *options.Project) error {
	fileNames := []struct {
		key    Key
		target *string
	}{
		{key: OutputFile, target: &project.OutputFile},
		{key: ListFile, target: &project.ListFile},
		{key: LogFile, target: &project.LogFile},
	}

	for _, name := range fileNames {
		value, ok, err := props.String(name.key)
		if err != nil {
			return err
		}
		if ok {
			*name.target = value
		}
	}
	return nil
}

func readLayout(props *Properties, project *options.Project) error {
	if err := readBoundedInt(props, DBAlign, 1, options.MaxDBAlign, &project.DBAlign); err != nil {
		return err
	}
	if err := readBoundedInt(props, TabSize, 0, options.MaxTabSize, &project.TabSize); err != nil {
		return err
	}

	if value, ok, err := props.String(CodeLabelPrefix); err != nil {
		return err
	} else if ok {
		project.CodeLabelPrefix = value
	}
	if value, ok, err := props.String(DataLabelPrefix); err != nil {
		return err
	} else if ok {
		project.DataLabelPrefix = value
	}

	value, ok, err := props.String(HexFormat)
	if err != nil || !ok {
		return err
	}
	format, err := symbols.ParseHexFormat(value)
	if err != nil {
		return &Error{Key: HexFormat, Line: props.Line(HexFormat, 0), Err: err}
	}
	project.HexFormat = format
	return nil
}

func readWindow(props *Properties, project *options.Project) error {
	project.HasStartAddress = props.Has(StartAddress)
	project.HasEndAddress = props.Has(EndAddress)
	if err := readAddress(props, StartAddress, &project.StartAddress); err != nil {
		return err
	}
	if err := readAddress(props, EndAddress, &project.EndAddress); err != nil {
		return err
	}
	if project.HasStartAddress && project.HasEndAddress && project.StartAddress > project.EndAddress {
		return &Error{Key: EndAddress, Line: props.Line(EndAddress, 0),
			Err: fmt.Errorf("end address 0x%04X is lower than start address 0x%04X", project.EndAddress, project.StartAddress)}
	}

	for i, value := range props.List(StartOff) {
		address, err := symbols.ParseNumber(value)
		if err != nil {
			return &Error{Key: StartOff, Line: props.Line(StartOff, i), Err: err}
		}
		project.StartOffsets = append(project.StartOffsets, address)
	}
	return nil
}

// readSymbols reads the user labels in the form "name address" and the EQU
// aliases in the form "name value".
func readSymbols(props *Properties, project *options.Project) error {
	for i, value := range props.List(Label) {
		name, addressValue, err := splitNameValue(value)
		if err != nil {
			return &Error{Key: Label, Line: props.Line(Label, i), Err: err}
		}
		address, err := symbols.ParseNumber(addressValue)
		if err != nil {
			return &Error{Key: Label, Line: props.Line(Label, i), Err: err}
		}
		project.Labels = append(project.Labels, options.Label{Name: name, Address: address})
	}

	for i, value := range props.List(Equ) {
		name, equValue, err := splitNameValue(value)
		if err != nil {
			return &Error{Key: Equ, Line: props.Line(Equ, i), Err: err}
		}
		project.Equs = append(project.Equs, options.Equ{Name: name, Value: equValue})
	}
	return nil
}

func readFlags(props *Properties, project *options.Project) error {
	if value, ok, err := props.Bool(Undocumented); err != nil {
		return err
	} else if ok {
		project.Undocumented = value
	}
	if value, ok, err := props.Bool(HexComments); err != nil {
		return err
	} else if ok {
		project.HexComments = value
	}
	return nil
}

func readAddress(props *Properties, key Key, target *uint16) error {
	value, ok, err := props.Address(key)
	if err != nil {
		return err
	}
	if ok {
		*target = value
	}
	return nil
}

func readBoundedInt(props *Properties, key Key, minimum, maximum int, target *int) error {
	value, ok, err := props.Int(key)
	if err != nil || !ok {
		return err
	}
	if value < minimum || value > maximum {
		return &Error{Key: key, Line: props.Line(key, 0),
			Err: fmt.Errorf("value %d is not in range %d..%d", value, minimum, maximum)}
	}
	*target = value
	return nil
}

func splitNameValue(s string) (string, string, error) {
	name, value, ok := strings.Cut(strings.TrimSpace(s), " ")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return "", "", fmt.Errorf("expected 'name value' but got '%s'", s)
	}
	return name, value, nil
}
