/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"errors"

	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedLanguages = []language.Tag{
	language.English,
	language.Russian,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// Page and error strings, keyed by their English text.
var russian = map[string]string{
	"Product search":                        "Поиск товаров",
	"Enter a query to search for products":  "Введите запрос для поиска товаров",
	"For example: condensed milk, borodinsky bread, russian cheese": "Например: сгущенное молоко, хлеб бородинский, сыр российский",
	"Search":                                "Найти товары",
	"Searching...":                          "Поиск...",
	"Analysing your query...":               "Анализируем запрос...",
	"Search results:":                       "Результаты поиска:",
	"Entities found:":                       "Найденные сущности:",
	"No entities found":                     "Сущности не найдены",
	"HTTP error, status %d":                 "Ошибка HTTP, статус %d",
	"Malformed response from the recognition service": "Некорректный ответ сервиса распознавания",
	"Query is too long: %d characters, maximum %d":    "Запрос слишком длинный: %d символов, максимум %d",
	"An error occurred":                     "Произошла ошибка",
}

func init() {
	for key, msg := range russian {
		if err := message.SetString(language.Russian, key, msg); err != nil {
			panic(err)
		}
	}
}

// printer picks a message printer for an Accept-Language header, falling
// back to English.
func printer(acceptLanguage string) (*message.Printer, string) {
	tag, _ := language.MatchStrings(languageMatcher, acceptLanguage)
	base, _ := tag.Base()
	lang := language.Make(base.String())
	return message.NewPrinter(lang), base.String()
}

// errorMessage is the banner text for a failed search. Network failures are
// shown as they are; everything else gets a localised message.
func errorMessage(p *message.Printer, err error) string {
	var (
		status    *predict.StatusError
		malformed *predict.MalformedResponseError
		tooLong   *predict.QueryTooLongError
		transport *predict.TransportError
	)
	switch {
	case err == nil:
		return p.Sprintf("An error occurred")
	case errors.As(err, &status):
		return p.Sprintf("HTTP error, status %d", status.Code)
	case errors.As(err, &malformed):
		return p.Sprintf("Malformed response from the recognition service")
	case errors.As(err, &tooLong):
		return p.Sprintf("Query is too long: %d characters, maximum %d", tooLong.Length, tooLong.Max)
	case errors.As(err, &transport):
		return transport.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return p.Sprintf("An error occurred")
}
