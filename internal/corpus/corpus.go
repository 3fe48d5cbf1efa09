// Package corpus flattens sefarim and commentary files into search records.
package corpus

import (
	"encoding/json"
	"fmt"

	"github.com/mrlokans/chumash/internal/content"
	"github.com/mrlokans/chumash/internal/hebrew"
	"github.com/mrlokans/chumash/internal/search"
)

// PasukRef is the verse summary carried in every record's original item.
type PasukRef struct {
	ID       content.ItemID `json:"id"`
	Sefer    int            `json:"sefer"`
	Perek    int            `json:"perek"`
	PasukNum int            `json:"pasuk_num"`
	Text     string         `json:"text"`
}

type questionItem struct {
	Pasuk    PasukRef         `json:"pasuk"`
	Question content.Question `json:"question"`
}

type perushItem struct {
	Pasuk    PasukRef         `json:"pasuk"`
	Question content.Question `json:"question"`
	Perush   content.Perush   `json:"perush"`
}

type commentaryItem struct {
	Pasuk      PasukRef `json:"pasuk"`
	Mefaresh   string   `json:"mefaresh"`
	MefareshEn string   `json:"mefaresh_en"`
	Text       string   `json:"text"`
}

// Book is one sefer with the commentary files loaded for it.
type Book struct {
	Sefer        int
	Data         *content.Sefer
	Commentaries []content.LoadedCommentary
}

// Build returns the records of one sefer in reading order: each pasuk, then
// its questions each followed by their perushim, then the commentary files'
// entries on that pasuk in the order given. Entries with empty text are
// skipped.
func Build(sefer int, book *content.Sefer, commentaries []content.LoadedCommentary) []search.Record {
	if book == nil {
		return nil
	}

	records := make([]search.Record, 0, book.VerseCount()*(1+len(commentaries)))
	for _, parsha := range book.Parshiot {
		for _, perek := range parsha.Perakim {
			for _, pasuk := range perek.Pesukim {
				ref := PasukRef{
					ID:       pasuk.ID,
					Sefer:    sefer,
					Perek:    perek.PerekNum,
					PasukNum: pasuk.PasukNum,
					Text:     pasuk.Text,
				}
				records = appendPasuk(records, ref, pasuk)
				records = appendCommentaries(records, ref, commentaries)
			}
		}
	}
	return records
}

// BuildAll concatenates Build over books in the given order.
func BuildAll(books []Book) []search.Record {
	var records []search.Record
	for _, b := range books {
		records = append(records, Build(b.Sefer, b.Data, b.Commentaries)...)
	}
	return records
}

func appendPasuk(records []search.Record, ref PasukRef, pasuk content.Pasuk) []search.Record {
	id := string(pasuk.ID)
	if id == "" {
		id = hebrew.VerseRef{Sefer: ref.Sefer, Perek: ref.Perek, Pasuk: ref.PasukNum}.String()
	}

	records = append(records, search.Record{
		Kind:     search.KindPasuk,
		ID:       "pasuk-" + id,
		Sefer:    ref.Sefer,
		Perek:    ref.Perek,
		Pasuk:    ref.PasukNum,
		Text:     pasuk.Text,
		Original: raw(ref),
	})

	for _, c := range pasuk.Content {
		for _, q := range c.Questions {
			records = append(records, search.Record{
				Kind:         search.KindQuestion,
				ID:           "question-" + string(q.ID),
				Sefer:        ref.Sefer,
				Perek:        ref.Perek,
				Pasuk:        ref.PasukNum,
				Text:         q.Text,
				QuestionText: q.Text,
				Original:     raw(questionItem{Pasuk: ref, Question: q}),
			})
			for _, p := range q.Perushim {
				records = append(records, search.Record{
					Kind:         search.KindPerush,
					ID:           "perush-" + string(p.ID),
					Sefer:        ref.Sefer,
					Perek:        ref.Perek,
					Pasuk:        ref.PasukNum,
					Text:         p.Text,
					Mefaresh:     hebrew.NormalizeMefaresh(p.Mefaresh),
					QuestionText: q.Text,
					Original:     raw(perushItem{Pasuk: ref, Question: q, Perush: p}),
				})
			}
		}
	}
	return records
}

func appendCommentaries(records []search.Record, ref PasukRef, commentaries []content.LoadedCommentary) []search.Record {
	for _, lc := range commentaries {
		text := lc.Data.Verse(ref.Perek, ref.PasukNum)
		if text == "" {
			continue
		}
		mefaresh := hebrew.NormalizeMefaresh(lc.Commentator.Hebrew)
		records = append(records, search.Record{
			Kind:     search.KindPerush,
			ID:       fmt.Sprintf("sefaria-%d-%d-%d-%s", ref.Sefer, ref.Perek, ref.PasukNum, lc.Commentator.English),
			Sefer:    ref.Sefer,
			Perek:    ref.Perek,
			Pasuk:    ref.PasukNum,
			Text:     text,
			Mefaresh: mefaresh,
			Original: raw(commentaryItem{
				Pasuk:      ref,
				Mefaresh:   mefaresh,
				MefareshEn: lc.Commentator.English,
				Text:       text,
			}),
		})
	}
	return records
}

// raw encodes values built from decoded payloads, which always marshal.
func raw(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
