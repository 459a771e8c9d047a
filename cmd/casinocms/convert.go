package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/eringen/casinocms"
	"github.com/eringen/casinocms/converter"
)

// conversionFlags are shared by convert and watch.
type conversionFlags struct {
	props       string
	typesImport string
	bindings    string
	brand       string
}

func (f *conversionFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.props, "props", converter.DefaultPropsType, "type name of the data prop")
	fs.StringVar(&f.typesImport, "types", converter.DefaultTypesImport, "module the data prop type is imported from")
	fs.StringVar(&f.bindings, "bindings", "", "YAML file merged over the default field bindings")
	fs.StringVar(&f.brand, "brand", "", "example brand name bound in narrative text")
}

func (f *conversionFlags) options(fsys afero.Fs) (converter.Options, error) {
	opts := converter.Options{
		PropsType:   f.props,
		TypesImport: f.typesImport,
		Brand:       f.brand,
	}
	if f.bindings != "" {
		file, err := fsys.Open(f.bindings)
		if err != nil {
			return opts, fmt.Errorf("open bindings: %w", err)
		}
		defer file.Close()
		b, err := converter.LoadBindings(file)
		if err != nil {
			return opts, fmt.Errorf("load bindings %s: %w", f.bindings, err)
		}
		opts.Bindings = b
	}
	return opts, nil
}

func runConvert(args []string) error {
	cmd := flag.NewFlagSet("convert", flag.ContinueOnError)
	var (
		cf   conversionFlags
		name string
		out  string
	)
	cf.register(cmd)
	cmd.StringVar(&name, "name", "", "component name (default derived from the file name)")
	cmd.StringVar(&out, "o", "", "output file (default stdout)")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: casinocms convert [flags] file.html")
	}

	fsys := afero.NewOsFs()
	opts, err := cf.options(fsys)
	if err != nil {
		return err
	}
	opts.ComponentName = name
	res, err := convertFile(fsys, cmd.Arg(0), opts)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.WriteString(res.Source)
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fsys, out, []byte(res.Source), 0o644)
}

// exportSlug derives a slug from an export's file name.
func exportSlug(path string) string {
	base := filepath.Base(path)
	return casinocms.Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}

func convertFile(fsys afero.Fs, path string, opts converter.Options) (*converter.Result, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if opts.Slug == "" {
		opts.Slug = exportSlug(path)
	}
	res, err := converter.Convert(f, opts)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	return res, nil
}
