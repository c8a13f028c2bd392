package parser

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"bestcard/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// amountPattern: первое число со знаком, опционально с символом валюты до или суффиксом после.
var amountPattern = regexp.MustCompile(
	`([-−])?(?:([$€£])\s*)?([-−])?(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)\s*(元|块|刀|美元|美金|欧元|英镑|人民币|rmb|usd|eur|cny|gbp|jpy|hkd|dollars?|bucks?|euros?)?`,
)

// keywordSet: латинские слова ищем по границам слов (иначе "vegas" даёт gas),
// остальное (китайский) подстрокой.
type keywordSet struct {
	words   *regexp.Regexp
	phrases []string
}

func newKeywordSet(keywords ...string) keywordSet {
	var set keywordSet
	var latin []string
	for _, kw := range keywords {
		if isASCII(kw) {
			latin = append(latin, regexp.QuoteMeta(kw))
		} else {
			set.phrases = append(set.phrases, kw)
		}
	}
	if len(latin) > 0 {
		set.words = regexp.MustCompile(`\b(?:` + strings.Join(latin, "|") + `)(?:s|es)?\b`)
	}
	return set
}

func (k keywordSet) match(text string) bool {
	if k.words != nil && k.words.MatchString(text) {
		return true
	}
	for _, p := range k.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

type categoryKeywords struct {
	category string
	keywords keywordSet
}

// Порядок важен: первая совпавшая категория побеждает.
var categoryTable = []categoryKeywords{
	{domain.CategoryGrocery, newKeywordSet(
		"grocery", "groceries", "supermarket", "costco", "whole foods", "trader joe", "walmart",
		"超市", "买菜", "菜市场", "生鲜", "杂货",
	)},
	{domain.CategoryDining, newKeywordSet(
		"dinner", "lunch", "breakfast", "brunch", "restaurant", "dining", "cafe", "coffee", "takeout",
		"餐厅", "吃饭", "晚饭", "午饭", "早饭", "早餐", "外卖", "聚餐", "饭店", "咖啡",
	)},
	{domain.CategoryTravel, newKeywordSet(
		"hotel", "flight", "airline", "airbnb", "travel", "booking", "train ticket", "trip",
		"机票", "酒店", "旅行", "旅游", "航班", "高铁", "火车",
	)},
	{domain.CategoryGas, newKeywordSet(
		"gas station", "gasoline", "fuel", "petrol", "gas",
		"加油", "油费", "汽油",
	)},
	{domain.CategoryOnlineShopping, newKeywordSet(
		"amazon", "online", "taobao", "ebay", "jd.com",
		"淘宝", "京东", "网购", "拼多多", "天猫",
	)},
}

var foreignKeywords = newKeywordSet(
	"international", "abroad", "overseas", "foreign",
	"境外", "海外", "国外", "出国", "跨境",
)

var currencyBySymbol = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

var currencyBySuffix = map[string]string{
	"元":       "CNY",
	"块":       "CNY",
	"人民币":     "CNY",
	"rmb":     "CNY",
	"cny":     "CNY",
	"刀":       "USD",
	"美元":      "USD",
	"美金":      "USD",
	"usd":     "USD",
	"dollar":  "USD",
	"dollars": "USD",
	"buck":    "USD",
	"bucks":   "USD",
	"欧元":      "EUR",
	"eur":     "EUR",
	"euro":    "EUR",
	"euros":   "EUR",
	"英镑":      "GBP",
	"gbp":     "GBP",
	"jpy":     "JPY",
	"hkd":     "HKD",
}

// KeywordExtractor is the deterministic, offline strategy.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// normalize folds full-width characters (２３０元) and case.
func normalize(message string) string {
	return cases.Fold().String(width.Fold.String(message))
}

func (k *KeywordExtractor) Extract(_ context.Context, message, _ string) (Fields, error) {
	text := normalize(message)

	var f Fields
	if m := amountPattern.FindStringSubmatchIndex(text); m != nil {
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return text[m[2*i]:m[2*i+1]]
		}
		if amount, err := decimal.NewFromString(strings.ReplaceAll(group(4), ",", "")); err == nil {
			if negativeSign(text, m[2], group(1)) || group(3) != "" {
				amount = amount.Neg()
			}
			f.Amount = &amount
		}
		if code, ok := currencyBySymbol[group(2)]; ok {
			f.Currency = code
		} else if code, ok := currencyBySuffix[group(5)]; ok {
			f.Currency = code
		}
	}

	f.Category = matchCategory(text)
	foreign := foreignKeywords.match(text)
	f.IsForeign = &foreign
	return f, nil
}

// negativeSign: минус считается знаком, только если перед ним нет буквы или
// цифры ("covid-19" не отрицательное).
func negativeSign(text string, start int, sign string) bool {
	if sign == "" {
		return false
	}
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func matchCategory(text string) string {
	for _, entry := range categoryTable {
		if entry.keywords.match(text) {
			return entry.category
		}
	}
	return domain.CategoryOther
}
