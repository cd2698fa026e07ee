package tag

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var codepages = map[string]encoding.Encoding{
	"ANSI_874":  charmap.Windows874,
	"ANSI_932":  japanese.ShiftJIS,
	"ANSI_936":  simplifiedchinese.GBK,
	"ANSI_949":  korean.EUCKR,
	"ANSI_950":  traditionalchinese.Big5,
	"ANSI_1250": charmap.Windows1250,
	"ANSI_1251": charmap.Windows1251,
	"ANSI_1252": charmap.Windows1252,
	"ANSI_1253": charmap.Windows1253,
	"ANSI_1254": charmap.Windows1254,
	"ANSI_1255": charmap.Windows1255,
	"ANSI_1256": charmap.Windows1256,
	"ANSI_1257": charmap.Windows1257,
	"ANSI_1258": charmap.Windows1258,
}

// EncodingFor maps a $DWGCODEPAGE value like "ANSI_1252" to its text
// encoding. Unknown code pages fall back to Windows-1252, the default of
// DXF R12 to R2004.
func EncodingFor(codepage string) encoding.Encoding {
	if enc, ok := codepages[strings.ToUpper(strings.TrimSpace(codepage))]; ok {
		return enc
	}
	return charmap.Windows1252
}

// UTF8 is the text encoding of DXF R2007 and later
var UTF8 encoding.Encoding = unicode.UTF8
