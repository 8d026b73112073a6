package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	opts    = DefaultOptions()
	input   InputSpec
	outDir  string
	watchIt bool
)

// NewRootCommand builds the spimdisasm root command, wiring every flag
// named in SPEC_FULL.md §6 onto the Options struct. Config-file handling
// (optional --config, falling back to ~/.spimdisasm.yaml) mirrors the
// retrieval pack's Manu343726-cucaracha cmd/root.go almost line for line:
// same cobra.OnInitialize(initConfig) + viper.AutomaticEnv() shape.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "spimdisasm",
		Short:   "Reconstruct assembler-ready source from a stripped MIPS binary",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := RunConfig{Input: input, Options: opts, OutDir: outDir, Watch: watchIt}
			if err := Run(rc, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.spimdisasm.yaml)")

	root.Flags().StringVar(&input.ROM, "rom", "", "path to the raw ROM/binary image")
	root.Flags().StringVar(&input.SplitCSV, "splits", "", "path to the split CSV (offset,vram,type,name)")
	root.Flags().StringVar(&input.SymbolCSV, "symbols-csv", "", "path to a symbol CSV (name,vram,size?,type?)")
	root.Flags().StringVar(&input.SymbolAddrs, "symbol-addrs", "", "path to a splat symbol_addrs.txt")
	root.Flags().StringVar(&input.ELF, "elf", "", "path to an ELF object (mutually exclusive with --rom/--splits)")
	root.Flags().StringVarP(&outDir, "out", "o", "asm", "output directory for generated assembly")
	root.Flags().BoolVar(&watchIt, "watch", false, "re-run analysis whenever an input file changes on disk")

	root.Flags().StringVar(&opts.Endianness, "endian", opts.Endianness, "endianness: big|little")
	root.Flags().StringVar(&opts.ABI, "abi", opts.ABI, "ABI: o32|n32|n64")
	root.Flags().StringVar(&opts.Category, "category", opts.Category, "instruction category: cpu|rsp|r3000gte|r4000allegrex|r5900ee")
	root.Flags().StringVar(&opts.Profile, "compiler-profile", opts.Profile, "compiler profile: ido|gcc|sn|psyq|modern-gas")

	root.Flags().IntVar(&opts.RodataStringGuesser, "rodata-string-guesser", opts.RodataStringGuesser, "rodata string guesser level (0-4)")
	root.Flags().IntVar(&opts.DataStringGuesser, "data-string-guesser", opts.DataStringGuesser, "data string guesser level (0-4)")
	root.Flags().IntVar(&opts.PascalStringGuesser, "pascal-string-guesser", opts.PascalStringGuesser, "pascal string guesser level (0-4)")

	root.Flags().StringVar(&opts.CustomSuffix, "custom-suffix", "", "custom name suffix (stored in the config; autogenerated names do not carry it)")
	root.Flags().BoolVar(&opts.SequentialLabelNames, "sequential-label-names", false, "sequential branch-label naming (stored in the config; label naming does not consult it)")
	root.Flags().BoolVar(&opts.NameVarsByType, "name-vars-by-type", false, "type-based symbol naming (stored in the config; autogenerated names do not consult it)")
	root.Flags().BoolVar(&opts.NameVarsByFile, "name-vars-by-file", false, "file-based symbol naming (stored in the config; autogenerated names do not consult it)")
	root.Flags().BoolVar(&opts.NameVarsBySection, "name-vars-by-section", false, "section-based symbol naming (stored in the config; autogenerated names do not consult it)")
	root.Flags().BoolVar(&opts.LegacySymAddrZeroPadding, "legacy-sym-addr-zero-padding", false, "6-hex-digit address padding (stored in the config; autogenerated addresses always use 8 digits)")
	root.Flags().BoolVar(&opts.DetectRedundantFunctionEnd, "detect-redundant-function-end", opts.DetectRedundantFunctionEnd, "redundant jr $ra detection (stored in the config; function boundary detection does not consult it)")

	root.Flags().BoolVar(&opts.AsmEmitSizeDirective, "asm-emit-size-directive", opts.AsmEmitSizeDirective, "emit a .size directive after every symbol")
	root.Flags().BoolVar(&opts.NoEmitCpload, "no-emit-cpload", false, "suppress the .cpload preamble (stored in the config; the emitter writes no .cpload preamble either way)")
	root.Flags().IntVar(&opts.AsmIndentation, "asm-indentation", opts.AsmIndentation, "spaces of indentation for instruction/data lines")
	root.Flags().IntVar(&opts.AsmIndentationLabels, "asm-indentation-labels", opts.AsmIndentationLabels, "spaces of indentation for label lines")
	root.Flags().BoolVar(&opts.GpRelHack, "gp-rel-hack", false, "expand %gp_rel operands into their macro form with prepended .extern declarations")

	root.Flags().BoolVar(&opts.PanicRangeCheck, "panic-range-check", false, "upgrade input-range/size-mismatch warnings to fatal errors")

	cobra.OnInitialize(initConfig)
	return root
}

// initConfig reads a config file and environment variables on top of the
// cobra-flag defaults, adapted from the pack's cucaracha cmd/root.go
// initConfig: config file < environment < CLI flag, matching spec §6.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".spimdisasm")
		}
	}

	viper.SetEnvPrefix("SPIMDISASM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "spimdisasm: using config file:", viper.ConfigFileUsed())
	}
}

// Execute runs the root command and returns the process exit code per
// spec §6 (0 success, 1 CLI misuse, 2 input error, 3 fatal analysis error).
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(CodeOf(err))
	}
	return int(ExitSuccess)
}
