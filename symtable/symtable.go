package symtable

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/crcgen/crcgen/bwe"
	"github.com/crcgen/crcgen/kernel"
	"github.com/crcgen/crcgen/macro"
	"github.com/crcgen/crcgen/model"
)

// ErrUnknownSymbol is returned by GetTerminal for any identifier this
// table doesn't recognise; it satisfies errors.Is(err, macro.ErrSymbolLookup)
// so package macro can tell a lookup miss apart from any other failure.
var ErrUnknownSymbol = fmt.Errorf("symtable: %w", macro.ErrSymbolLookup)

// SymbolTable is the macro language's symbol source for CRC C-source
// generation: a static table seeded from Options at construction, plus a
// larger set of symbols resolved and memoized on first lookup. It
// implements macro.SymbolSource. Grounded on crc_symtable.py's
// SymbolTable class, including its getTerminal/__getTerminal split.
type SymbolTable struct {
	opt   Options
	table map[string]string
}

// New builds a SymbolTable for opt. opt.Model may be partially defined;
// undefined fields become runtime cfg_t members in the generated code.
func New(opt Options) *SymbolTable {
	s := &SymbolTable{opt: opt, table: make(map[string]string)}
	s.seedStatic()
	return s
}

func (s *SymbolTable) seedStatic() {
	m := s.opt.Model
	t := map[string]string{
		"nop":             "",
		"datetime":        s.opt.timestamp(),
		"program_version": s.opt.VersionStr,
		"program_url":     s.opt.WebAddress,
		"filename":        s.opt.headerBasename(),
		"header_filename": prettyHeaderFilename(s.opt.OutputFile),

		"crc_width":       prettyStr(m.Width),
		"crc_poly":        prettyHex(m.Poly, m.Width),
		"crc_reflect_in":  prettyBool(m.ReflectIn),
		"crc_xor_in":      prettyHex(m.XorIn, m.Width),
		"crc_reflect_out": prettyBool(m.ReflectOut),
		"crc_xor_out":     prettyHex(m.XorOut, m.Width),

		"crc_table_idx_width": prettyStr(intPtr(m.TableIdxWidthOrDefault())),
		"crc_table_width":     prettyStr(intPtr(m.TableWidthOrDefault())),
		"crc_table_mask":      prettyHexInt(m.TableWidthOrDefault()-1, 8),

		"cfg_width":             `$if ($crc_width != Undefined) {:$crc_width:} $else {:cfg->width:}`,
		"cfg_poly":              `$if ($crc_poly != Undefined) {:$crc_poly:} $else {:cfg->poly:}`,
		"cfg_poly_shifted":      `$if ($crc_shift != 0) {:($cfg_poly << $cfg_shift):} $else {:$cfg_poly:}`,
		"cfg_reflect_in":        `$if ($crc_reflect_in != Undefined) {:$crc_reflect_in:} $else {:cfg->reflect_in:}`,
		"cfg_xor_in":            `$if ($crc_xor_in != Undefined) {:$crc_xor_in:} $else {:cfg->xor_in:}`,
		"cfg_reflect_out":       `$if ($crc_reflect_out != Undefined) {:$crc_reflect_out:} $else {:cfg->reflect_out:}`,
		"cfg_xor_out":           `$if ($crc_xor_out != Undefined) {:$crc_xor_out:} $else {:cfg->xor_out:}`,
		"cfg_table_idx_width":   `$if ($crc_table_idx_width != Undefined) {:$crc_table_idx_width:} $else {:cfg->table_idx_width:}`,
		"cfg_table_width":       `$if ($crc_table_width != Undefined) {:$crc_table_width:} $else {:cfg->table_width:}`,
		"cfg_mask":              `$if ($crc_mask != Undefined) {:$crc_mask:} $else {:cfg->crc_mask:}`,
		"cfg_mask_shifted":      `$if ($crc_shift != 0) {:($cfg_mask << $cfg_shift):} $else {:$cfg_mask:}`,
		"cfg_msb_mask":          `$if ($crc_msb_mask != Undefined) {:$crc_msb_mask:} $else {:cfg->msb_mask:}`,
		"cfg_msb_mask_shifted":  `$if ($crc_shift != 0) {:($cfg_msb_mask << $cfg_shift):} $else {:$cfg_msb_mask:}`,
		"cfg_shift":             `$if ($crc_shift != Undefined) {:$crc_shift:} $else {:cfg->crc_shift:}`,

		"undefined_parameters": prettyBool(boolPtr(s.opt.undefinedCrcParameters())),
		"use_cfg_t":            prettyBool(boolPtr(s.opt.undefinedCrcParameters())),
		"c_std":                s.opt.CStd.String(),
		"c_bool":               `$if ($c_std == C89) {:int:} $else {:bool:}`,
		"c_true":               `$if ($c_std == C89) {:1:} $else {:true:}`,
		"c_false":              `$if ($c_std == C89) {:0:} $else {:false:}`,

		"underlying_crc_t": s.getUnderlyingCrcT(),
		"include_files":    s.getIncludeFiles(),

		"crc_prefix":                   s.opt.SymbolPrefix,
		"crc_t":                        s.opt.SymbolPrefix + "t",
		"cfg_t":                        s.opt.SymbolPrefix + "cfg_t",
		"crc_reflect_function":         s.opt.SymbolPrefix + "reflect",
		"crc_bitwise_expression_function": s.opt.SymbolPrefix + "bitwise_expression",
		"crc_table_gen_function":       s.opt.SymbolPrefix + "table_gen",
		"crc_init_function":            s.opt.SymbolPrefix + "init",
		"crc_update_function":          s.opt.SymbolPrefix + "update",
		"crc_finalize_function":        s.opt.SymbolPrefix + "finalize",
	}

	if m.Width != nil {
		t["crc_mask"] = prettyHex(u128Ptr(m.Mask()), m.Width)
		t["crc_msb_mask"] = prettyHex(u128Ptr(m.MSBMask()), m.Width)
	} else {
		t["crc_mask"] = "Undefined"
		t["crc_msb_mask"] = "Undefined"
	}

	needsShift := s.opt.Algorithm == kernel.TableDriven || s.opt.Algorithm == kernel.BitwiseExpression
	switch {
	case needsShift && m.Width == nil:
		t["crc_shift"] = "Undefined"
	case needsShift && *m.Width < 8:
		t["crc_shift"] = prettyStr(intPtr(8 - *m.Width))
	default:
		t["crc_shift"] = prettyStr(intPtr(0))
	}

	s.table = t
}

// GetTerminal expands id to its terminal text, resolving and memoizing
// dynamic symbols on first access. It implements macro.SymbolSource.
// Ported from SymbolTable.getTerminal/__getTerminal.
func (s *SymbolTable) GetTerminal(id string) (string, error) {
	if id == "" {
		return "", nil
	}
	if v, ok := s.table[id]; ok {
		return v, nil
	}
	v, err := s.resolveDynamic(id)
	if err != nil {
		return "", err
	}
	s.table[id] = v
	return v, nil
}

func (s *SymbolTable) resolveDynamic(id string) (string, error) {
	m := s.opt.Model
	algo := s.opt.Algorithm

	switch id {
	case "constant_crc_init":
		return prettyBool(boolPtr(s.getInitValue() != "")), nil

	case "constant_crc_table":
		return prettyBool(boolPtr(m.Width != nil && m.Poly != nil && m.ReflectIn != nil)), nil

	case "simple_crc_update_def":
		switch algo {
		case kernel.BitByBit, kernel.BitByBitFast:
			if m.Width != nil && m.Poly != nil && m.ReflectIn != nil {
				return "True", nil
			}
		case kernel.BitwiseExpression, kernel.TableDriven:
			if m.Width != nil && m.ReflectIn != nil {
				return "True", nil
			}
		}
		return "False", nil

	case "inline_crc_finalize":
		if (algo == kernel.BitByBitFast || algo == kernel.BitwiseExpression || algo == kernel.TableDriven) &&
			m.Width != nil && m.ReflectIn != nil && m.ReflectOut != nil && m.XorOut != nil {
			return "True", nil
		}
		return "False", nil

	case "simple_crc_finalize_def":
		switch algo {
		case kernel.BitByBit:
			if m.Width != nil && m.Poly != nil && m.ReflectOut != nil && m.XorOut != nil {
				return "True", nil
			}
		case kernel.BitByBitFast:
			if m.Width != nil && m.ReflectOut != nil && m.XorOut != nil {
				return "True", nil
			}
		case kernel.BitwiseExpression, kernel.TableDriven:
			if m.Width != nil && m.ReflectIn != nil && m.ReflectOut != nil && m.XorOut != nil {
				return "True", nil
			}
		}
		return "False", nil

	case "use_reflect_func":
		if m.ReflectIn != nil && !*m.ReflectIn && m.ReflectOut != nil && !*m.ReflectOut {
			return "False", nil
		}
		return "True", nil

	case "static_reflect_func":
		switch {
		case algo == kernel.BitwiseExpression || algo == kernel.TableDriven:
			return "False", nil
		case m.ReflectOut != nil && algo == kernel.BitByBitFast:
			return "False", nil
		default:
			return "True", nil
		}

	case "crc_algorithm":
		return algo.String(), nil

	case "crc_table_init":
		return s.getTableInit(), nil
	case "crc_table_core_algorithm_nonreflected":
		return s.getTableCoreAlgorithmNonreflected(), nil
	case "crc_table_core_algorithm_reflected":
		return s.getTableCoreAlgorithmReflected(), nil

	case "header_protection":
		return s.prettyHdrProtection(), nil

	case "crc_init_value":
		return s.getInitValue(), nil

	case "crc_bitwise_expression":
		return s.getBitwiseExpression()

	case "crc_final_value":
		return crcFinalValueTemplate, nil
	case "h_template":
		return hTemplate, nil
	case "source_header":
		return sourceHeaderTemplate, nil
	case "crc_reflect_doc":
		return crcReflectDocTemplate, nil
	case "crc_reflect_function_def":
		return crcReflectFunctionDefTemplate, nil
	case "crc_reflect_function_gen":
		return crcReflectFunctionGenTemplate, nil
	case "crc_init_function_gen":
		return crcInitFunctionGenTemplate, nil
	case "crc_update_function_gen":
		return crcUpdateFunctionGenTemplate, nil
	case "crc_finalize_function_gen":
		return crcFinalizeFunctionGenTemplate, nil
	case "crc_table_driven_func_gen":
		return crcTableDrivenFuncGenTemplate, nil
	case "crc_bitwise_expression_function_gen":
		return crcBitwiseExpressionFunctionGenTemplate, nil
	case "crc_bitwise_expression_doc":
		return crcBitwiseExpressionDocTemplate, nil
	case "crc_bitwise_expression_function_def":
		return crcBitwiseExpressionFunctionDefTemplate, nil
	case "crc_table_gen_doc":
		return crcTableGenDocTemplate, nil
	case "crc_table_gen_function_def":
		return crcTableGenFunctionDefTemplate, nil
	case "crc_init_doc":
		return crcInitDocTemplate, nil
	case "crc_init_function_def":
		return crcInitFunctionDefTemplate, nil
	case "crc_update_doc":
		return crcUpdateDocTemplate, nil
	case "crc_update_function_def":
		return crcUpdateFunctionDefTemplate, nil
	case "crc_finalize_doc":
		return crcFinalizeDocTemplate, nil
	case "crc_finalize_function_def":
		return crcFinalizeFunctionDefTemplate, nil
	case "c_template":
		return cTemplate, nil
	case "c_table_gen":
		return cTableGenTemplate, nil
	case "main_template":
		return mainTemplate, nil
	case "getopt_template":
		return getoptTemplate, nil

	default:
		return "", ErrUnknownSymbol
	}
}

// getBitwiseExpression builds the minimised formula for the current model
// and renders its C sub-expression; the result is memoized only through
// GetTerminal's string table. When Options.Verbose is set it logs one
// debug-level entry carrying the model width; per-bit terms are not
// logged. Grounded on __get_crc_bwe_expression; the logrus diagnostics are
// this repo's ambient-stack answer to pycrc's scattered print() calls
// (see SPEC_FULL.md §4.5).
func (s *SymbolTable) getBitwiseExpression() (string, error) {
	m := s.opt.Model
	if !m.Defined() {
		return "", pkgerrors.New("symtable: crc_bitwise_expression requires a fully-defined model")
	}
	expr, err := bwe.Build(m)
	if err != nil {
		return "", pkgerrors.Wrap(err, "symtable: building bitwise expression")
	}
	if s.opt.Verbose {
		s.opt.log().WithField("width", *m.Width).Debug("minimised bitwise-expression formula")
	}
	return expr.FormatC(), nil
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func u128Ptr(v model.U128) *model.U128 { return &v }

func prettyHexInt(v, widthBits int) string {
	u := model.U64(uint64(v))
	return prettyHex(&u, &widthBits)
}
