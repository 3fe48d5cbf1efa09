// Package contenttest provides small bundle fixtures for tests.
package contenttest

import (
	"encoding/json"
	"testing/fstest"

	"github.com/mrlokans/chumash/internal/content"
)

// BereishitVerses are the first ten pesukim of Bereishit, pointed.
var BereishitVerses = []string{
	"בְּרֵאשִׁית בָּרָא אֱלֹהִים אֵת הַשָּׁמַיִם וְאֵת הָאָרֶץ",
	"וְהָאָרֶץ הָיְתָה תֹהוּ וָבֹהוּ וְחֹשֶׁךְ עַל פְּנֵי תְהוֹם",
	"וַיֹּאמֶר אֱלֹהִים יְהִי אוֹר וַיְהִי אוֹר",
	"וַיַּרְא אֱלֹהִים אֶת הָאוֹר כִּי טוֹב",
	"וַיִּקְרָא אֱלֹהִים לָאוֹר יוֹם וְלַחֹשֶׁךְ קָרָא לָיְלָה",
	"וַיֹּאמֶר אֱלֹהִים יְהִי רָקִיעַ בְּתוֹךְ הַמָּיִם",
	"וַיַּעַשׂ אֱלֹהִים אֶת הָרָקִיעַ",
	"וַיִּקְרָא אֱלֹהִים לָרָקִיעַ שָׁמָיִם",
	"וַיֹּאמֶר אֱלֹהִים יִקָּווּ הַמַּיִם",
	"וַיִּקְרָא אֱלֹהִים לַיַּבָּשָׁה אֶרֶץ",
}

// Sefer builds a one-parsha book whose first perek holds verses. The first
// pasuk carries a single study question with one perush.
func Sefer(verses []string) *content.Sefer {
	pesukim := make([]content.Pasuk, 0, len(verses))
	for i, text := range verses {
		pesukim = append(pesukim, content.Pasuk{
			ID:       content.ItemID(itoa(i + 1)),
			PasukNum: i + 1,
			Text:     text,
		})
	}
	if len(pesukim) > 0 {
		pesukim[0].Content = []content.PasukContent{{
			Questions: []content.Question{{
				ID:   "q1",
				Text: "מדוע פתחה התורה בבריאת העולם",
				Perushim: []content.Perush{{
					ID:       "p1",
					Mefaresh: "רש\"י",
					Text:     "כח מעשיו הגיד לעמו",
				}},
			}},
		}}
	}
	return &content.Sefer{
		Parshiot: []content.Parsha{{
			Name:    "בראשית",
			Perakim: []content.Perek{{PerekNum: 1, Pesukim: pesukim}},
		}},
	}
}

// Commentary builds a commentary with one perek whose entries are texts.
func Commentary(texts ...string) *content.Commentary {
	row := make([]content.CommentaryEntry, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			row = append(row, nil)
			continue
		}
		row = append(row, content.CommentaryEntry{t})
	}
	return &content.Commentary{Text: [][]content.CommentaryEntry{row}}
}

// BundleFS returns an in-memory bundle with Bereishit, Rashi and Ibn Ezra on
// Bereishit, and Shemot.
func BundleFS() fstest.MapFS {
	return fstest.MapFS{
		"bereishit.json": {Data: mustJSON(Sefer(BereishitVerses))},
		"shemot.json": {Data: mustJSON(Sefer([]string{
			"וְאֵלֶּה שְׁמוֹת בְּנֵי יִשְׂרָאֵל הַבָּאִים מִצְרָיְמָה",
			"רְאוּבֵן שִׁמְעוֹן לֵוִי וִיהוּדָה",
		}))},
		"sefaria/Rashi_on_Genesis.json": {Data: mustJSON(Commentary(
			"אמר רבי יצחק לא היה צריך להתחיל את התורה",
			"תהו ובהו תהו לשון תמה ושממון",
		))},
		"sefaria/Ibn_Ezra_on_Genesis.json": {Data: mustJSON(Commentary(
			"",
			"",
			"ויאמר אלהים ברצונו",
		))},
	}
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func itoa(n int) string {
	data, _ := json.Marshal(n)
	return string(data)
}
