package symtable

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crcgen/crcgen/kernel"
	"github.com/crcgen/crcgen/model"
)

// prettyStr renders an optional int the way pycrc's __pretty_str does:
// "Undefined" for a missing value, the decimal text otherwise.
func prettyStr(v *int) string {
	if v == nil {
		return "Undefined"
	}
	return strconv.Itoa(*v)
}

// prettyHex renders an optional U128 as a zero-padded hex literal sized to
// widthBits (ceil(widthBits/4) nibbles), or unsized if widthBits is nil.
// Mirrors __pretty_hex.
func prettyHex(v *model.U128, widthBits *int) string {
	if v == nil {
		return "Undefined"
	}
	if widthBits == nil {
		return v.String()
	}
	nibbles := (*widthBits + 3) / 4
	return v.HexWidth(nibbles)
}

// prettyBool renders an optional bool as pycrc's __pretty_bool does:
// "Undefined", "True" or "False" -- note the capitalised Python-style
// literals, since these strings feed the macro comparison grammar
// ($if ($x == True)), not Go's own true/false.
func prettyBool(v *bool) string {
	if v == nil {
		return "Undefined"
	}
	if *v {
		return "True"
	}
	return "False"
}

// prettyHeaderFilename derives the generated header's name from the
// output file, or "pycrc_stdout.h" when generating to stdout.
func prettyHeaderFilename(outputFile string) string {
	if outputFile == "" {
		return "pycrc_stdout.h"
	}
	base := outputFile
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	if strings.HasSuffix(base, ".c") {
		return base[:len(base)-1] + "h"
	}
	return base + ".h"
}

// prettyHdrProtection builds a header-guard macro name out of the header
// basename, e.g. "pycrc_stdout" -> "__PYCRC_STDOUT__".
func (s *SymbolTable) prettyHdrProtection() string {
	filename := s.opt.headerBasename()
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(toUpperASCII(r))
		default:
			b.WriteByte('_')
		}
	}
	return "__" + b.String() + "__"
}

func toUpperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

// getUnderlyingCrcT picks the C type backing the crc_t typedef, per
// __get_underlying_crc_t: an explicit override wins, otherwise it's
// derived from the C dialect and the (possibly undefined) width.
func (s *SymbolTable) getUnderlyingCrcT() string {
	if s.opt.CrcType != "" {
		return s.opt.CrcType
	}
	width := s.opt.Model.Width
	if s.opt.CStd == C89 {
		switch {
		case width == nil:
			return "unsigned long int"
		case *width <= 8:
			return "unsigned char"
		case *width <= 16:
			return "unsigned int"
		default:
			return "unsigned long int"
		}
	}
	switch {
	case width == nil:
		return "unsigned long long int"
	case *width <= 8:
		return "uint_fast8_t"
	case *width <= 16:
		return "uint_fast16_t"
	case *width <= 32:
		return "uint_fast32_t"
	case *width <= 64:
		return "uint_fast64_t"
	case *width <= 128:
		return "uint_fast128_t"
	default:
		return "uintmax_t"
	}
}

// getIncludeFiles renders the extra #include lines, or "Undefined" if none
// were requested, so the templates' ($include_files != Undefined) guards
// skip the include block.
func (s *SymbolTable) getIncludeFiles() string {
	if len(s.opt.IncludeFiles) == 0 {
		return "Undefined"
	}
	lines := make([]string, len(s.opt.IncludeFiles))
	for i, inc := range s.opt.IncludeFiles {
		if strings.HasPrefix(inc, `"`) || strings.HasPrefix(inc, "<") {
			lines[i] = fmt.Sprintf("#include %s", inc)
		} else {
			lines[i] = fmt.Sprintf("#include %q", inc)
		}
	}
	return strings.Join(lines, "\n")
}

// getInitValue computes the compile-time initial register value for the
// selected algorithm, or "" when it can't be known until runtime (some
// parameter involved is undefined). Ported from __get_init_value.
func (s *SymbolTable) getInitValue() string {
	m := s.opt.Model
	switch s.opt.Algorithm {
	case kernel.BitByBit:
		if m.XorIn == nil || m.Width == nil || m.Poly == nil {
			return ""
		}
		// The non-direct init value: XorIn run through kernel's
		// bit-reversed shift transform, the same one the bit-by-bit
		// algorithm itself now applies before processing any data.
		full, err := model.New(*m.Width, *m.Poly, *m.XorIn, model.U64(0), boolVal(m.ReflectIn), false, m.TableIdxWidthOrDefault())
		if err != nil {
			return ""
		}
		init := kernel.NonDirectInit(full)
		return prettyHex(&init, m.Width)
	case kernel.BitByBitFast:
		if m.XorIn == nil {
			return ""
		}
		return prettyHex(m.XorIn, m.Width)
	case kernel.BitwiseExpression, kernel.TableDriven:
		if m.ReflectIn == nil || m.XorIn == nil || m.Width == nil {
			return ""
		}
		init := *m.XorIn
		if *m.ReflectIn {
			init = model.Reflect(init, *m.Width)
		}
		return prettyHex(&init, m.Width)
	default:
		zero := model.U64(0)
		return prettyHex(&zero, m.Width)
	}
}

func boolVal(b *bool) bool {
	return b != nil && *b
}

// getTableInit renders the precomputed CRC table as the comma-separated
// body of a C initialiser list (the surrounding braces come from the
// c_table_gen template), for the "constant table" case where every parameter
// feeding the table is known at generation time. Ported from
// __get_table_init.
func (s *SymbolTable) getTableInit() string {
	m := s.opt.Model
	if s.opt.Algorithm != kernel.TableDriven {
		return "0"
	}
	if m.Width == nil || m.Poly == nil || m.ReflectIn == nil {
		return "0"
	}
	full, err := model.New(*m.Width, *m.Poly, model.U64(0), model.U64(0), *m.ReflectIn, false, m.TableIdxWidthOrDefault())
	if err != nil {
		return "0"
	}
	tbl := kernel.GenTable(full)

	var valuesPerLine int
	switch {
	case *m.Width >= 32:
		valuesPerLine = 4
	case *m.Width >= 16:
		valuesPerLine = 8
	default:
		valuesPerLine = 16
	}
	formatWidth := *m.Width
	if formatWidth < 8 {
		formatWidth = 8
	}

	var out strings.Builder
	n := len(tbl)
	for i := 0; i < n; i++ {
		if i%valuesPerLine == 0 {
			out.WriteString("    ")
		}
		switch {
		case i == n-1:
			out.WriteString(prettyHex(&tbl[i], &formatWidth))
		case i%valuesPerLine == valuesPerLine-1:
			fmt.Fprintf(&out, "%s,\n", prettyHex(&tbl[i], &formatWidth))
		default:
			fmt.Fprintf(&out, "%s, ", prettyHex(&tbl[i], &formatWidth))
		}
	}
	return out.String()
}

// getTableCoreAlgorithmNonreflected renders the per-byte register-update
// core of the table-driven/bitwise-expression loop for non-reflected
// input, as raw (already macro-expanded-once) C text -- ported from
// __get_table_core_algorithm_nonreflected. Unlike most symbols this one
// is built by plain string concatenation rather than a single static
// template, because its shift amount and iteration count depend on the
// (possibly undefined) width and table index width.
func (s *SymbolTable) getTableCoreAlgorithmNonreflected() string {
	m := s.opt.Model
	if s.opt.Algorithm != kernel.TableDriven && s.opt.Algorithm != kernel.BitwiseExpression {
		return ""
	}

	indent := "        "
	if s.opt.undefinedCrcParameters() {
		indent = "            "
	}

	var shr string
	switch {
	case m.Width == nil:
		shr = "($cfg_width - $cfg_table_idx_width + $cfg_shift)"
	case *m.Width < 8:
		shr = strconv.Itoa(*m.Width - m.TableIdxWidthOrDefault() + 8 - *m.Width)
	default:
		shr = strconv.Itoa(*m.Width - m.TableIdxWidthOrDefault())
	}

	t := m.TableIdxWidthOrDefault()
	var b strings.Builder
	if t == 8 {
		lookup := `$if ($crc_algorithm == "table-driven") {:crc_table[tbl_idx]:}` +
			`$elif ($crc_algorithm == "bitwise-expression") {:$crc_bitwise_expression_function(tbl_idx):}`
		fmt.Fprintf(&b, "%stbl_idx = ((crc >> %s) ^ *data) & $crc_table_mask;\n%scrc = (%s ^ (crc << $cfg_table_idx_width)) & $cfg_mask_shifted;\n",
			indent, shr, indent, lookup)
	} else {
		lookup := `$if ($crc_algorithm == "table-driven") {:crc_table[tbl_idx & $crc_table_mask]:}` +
			`$elif ($crc_algorithm == "bitwise-expression") {:$crc_bitwise_expression_function(tbl_idx & $crc_table_mask):}`
		for i := 0; i < 8/t; i++ {
			strIdx := strconv.Itoa(8 - (i+1)*t)
			fmt.Fprintf(&b, "%stbl_idx = (crc >> %s) ^ (*data >> %s);\n%scrc = %s ^ (crc << $cfg_table_idx_width);\n",
				indent, shr, strIdx, indent, lookup)
		}
	}
	return b.String()
}

// getTableCoreAlgorithmReflected is the reflected-input counterpart of
// getTableCoreAlgorithmNonreflected, ported from
// __get_table_core_algorithm_reflected.
func (s *SymbolTable) getTableCoreAlgorithmReflected() string {
	m := s.opt.Model
	if s.opt.Algorithm != kernel.TableDriven && s.opt.Algorithm != kernel.BitwiseExpression {
		return ""
	}

	indent := "        "
	if s.opt.undefinedCrcParameters() {
		indent = "            "
	}
	crcShifted := `$if ($crc_shift != 0) {:(crc >> $cfg_shift):} $else {:crc:}`

	t := m.TableIdxWidthOrDefault()
	var b strings.Builder
	if t == 8 {
		lookup := `$if ($crc_algorithm == "table-driven") {:crc_table[tbl_idx]:}` +
			`$elif ($crc_algorithm == "bitwise-expression") {:$crc_bitwise_expression_function(tbl_idx):}`
		fmt.Fprintf(&b, "%stbl_idx = (%s ^ *data) & $crc_table_mask;\n%scrc = (%s ^ (crc >> $cfg_table_idx_width)) & $cfg_mask_shifted;\n",
			indent, crcShifted, indent, lookup)
	} else {
		lookup := `$if ($crc_algorithm == "table-driven") {:crc_table[tbl_idx & $crc_table_mask]:}` +
			`$elif ($crc_algorithm == "bitwise-expression") {:$crc_bitwise_expression_function(tbl_idx & $crc_table_mask):}`
		for i := 0; i < 8/t; i++ {
			fmt.Fprintf(&b, "%stbl_idx = %s ^ (*data >> (%d * $cfg_table_idx_width));\n%scrc = %s ^ (crc >> $cfg_table_idx_width);\n",
				indent, crcShifted, i, indent, lookup)
		}
	}
	return b.String()
}
