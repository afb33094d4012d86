package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/jung-kurt/gofpdf"
)

const (
	regularFontFile = "DejaVuSans.ttf"
	boldFontFile    = "DejaVuSans-Bold.ttf"
)

// Renderer строит PDF-отчеты.
// С каталогом шрифтов использует DejaVu с кириллицей, без него встроенный Helvetica
// и транслитерацию.
type Renderer struct {
	fontDir string
}

// NewRenderer создает Renderer. fontDir может быть пустым.
func NewRenderer(fontDir string) *Renderer {
	return &Renderer{fontDir: fontDir}
}

type document struct {
	pdf    *gofpdf.Fpdf
	family string
	text   func(string) string
}

func (r *Renderer) newDocument() (*document, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	if r.fontDir == "" {
		return &document{pdf: pdf, family: "Helvetica", text: transliterate}, nil
	}

	regular := filepath.Join(r.fontDir, regularFontFile)
	bold := filepath.Join(r.fontDir, boldFontFile)
	for _, f := range []string{regular, bold} {
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("font %s is not available: %w", f, err)
		}
	}
	pdf.AddUTF8Font("DejaVu", "", regular)
	pdf.AddUTF8Font("DejaVu", "B", bold)
	return &document{pdf: pdf, family: "DejaVu", text: func(s string) string { return s }}, nil
}

// WhoSolvedReport отчет "кто решал" по тесту: шапка теста и таблица завершенных попыток
func (r *Renderer) WhoSolvedReport(test model.Test, results []model.SolverResult, generatedAt time.Time) ([]byte, error) {
	doc, err := r.newDocument()
	if err != nil {
		return nil, err
	}
	pdf, tr := doc.pdf, doc.text

	pdf.AddPage()
	pdf.SetFont(doc.family, "B", 16)
	pdf.MultiCell(0, 10, tr(fmt.Sprintf("Отчет по тесту %s", test.PublicID)), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(doc.family, "", 12)
	info := fmt.Sprintf("Название: %s\nВремя на тест: %d мин\nПопыток: %d\nСформирован: %s",
		test.Title, test.DurationSec/60, len(results), generatedAt.Format("02.01.2006 15:04"))
	pdf.MultiCell(0, 7, tr(info), "", "L", false)
	pdf.Ln(4)

	headers := []string{"#", "Имя", "Telegram ID", "Балл", "%", "Время, с", "Статус", "Завершен"}
	widths := []float64{10, 48, 28, 18, 12, 18, 26, 30}

	pdf.SetFont(doc.family, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(doc.family, "", 10)
	for i, res := range results {
		finished := ""
		if res.FinishedAt != nil {
			finished = res.FinishedAt.Format("02.01.2006 15:04")
		}
		row := []string{
			strconv.Itoa(i + 1),
			truncate(res.UserName, 26),
			strconv.FormatInt(res.TelegramID, 10),
			fmt.Sprintf("%d/%d", res.Score, res.Total),
			strconv.Itoa(res.Percent),
			strconv.Itoa(res.TimeSpentSec),
			statusLabel(res.Status),
			finished,
		}
		for j, cell := range row {
			align := "L"
			if j != 1 {
				align = "C"
			}
			pdf.CellFormat(widths[j], 7, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(results) == 0 {
		pdf.Ln(4)
		pdf.MultiCell(0, 7, tr("Завершенных попыток пока нет."), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName имя файла отчета для отправки
func FileName(publicID string) string {
	return "report_" + publicID + ".pdf"
}

func statusLabel(s model.AttemptStatus) string {
	switch s {
	case model.StatusFinished:
		return "завершен"
	case model.StatusTimeout:
		return "время вышло"
	default:
		return string(s)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu",
	'я': "ya", '…': "...",
}

// transliterate заменяет кириллицу латиницей, остальное вне ASCII на '?'
func transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
			continue
		}
		lower := []rune(strings.ToLower(string(r)))[0]
		lat, ok := translit[lower]
		if !ok {
			b.WriteByte('?')
			continue
		}
		if lower != r && lat != "" {
			lat = strings.ToUpper(lat[:1]) + lat[1:]
		}
		b.WriteString(lat)
	}
	return b.String()
}
