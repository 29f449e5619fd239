package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formfill/pkg/model"
)

// DefaultDomain is used for persona e-mail addresses when no mailbox is
// attached.
const DefaultDomain = "temp.atv.local"

var (
	maleFirstNames = []string{
		"Александр", "Дмитрий", "Максим", "Сергей", "Андрей", "Алексей", "Артем", "Илья",
		"Кирилл", "Михаил", "Никита", "Матвей", "Роман", "Егор", "Арсений", "Иван",
		"Денис", "Евгений", "Тимофей", "Владислав", "Игорь", "Владимир", "Павел",
	}
	femaleFirstNames = []string{
		"Анна", "Мария", "Елена", "Наталья", "Ольга", "Татьяна", "Ирина", "Екатерина",
		"Светлана", "Юлия", "Анастасия", "Дарья", "Евгения", "Ксения", "Полина",
	}
	lastNames = []string{
		"Иванов", "Петров", "Смирнов", "Кузнецов", "Попов", "Васильев", "Соколов",
		"Михайлов", "Новиков", "Федоров", "Морозов", "Волков", "Алексеев", "Лебедев",
		"Семенов", "Егоров", "Павлов", "Козлов", "Степанов", "Николаев", "Орлов",
		"Андреев", "Макаров", "Захаров", "Борисов", "Яковлев", "Григорьев", "Романов",
	}
	// Patronymic stems; the suffix depends on gender.
	patronymicStems = []string{
		"Александров", "Дмитриев", "Максимов", "Сергеев", "Андреев", "Алексеев",
		"Артемов", "Кириллов", "Михайлов", "Матвеев", "Романов", "Владимиров",
	}
	cities = []string{
		"Москва", "Санкт-Петербург", "Новосибирск", "Екатеринбург", "Казань",
		"Нижний Новгород", "Челябинск", "Самара", "Омск", "Ростов-на-Дону",
		"Уфа", "Красноярск", "Воронеж", "Пермь", "Волгоград",
	}
	regions = []string{
		"Московская область", "Ленинградская область", "Новосибирская область",
		"Свердловская область", "Республика Татарстан", "Самарская область",
	}
	streets = []string{
		"Ленина", "Советская", "Мира", "Победы", "Центральная", "Новая", "Школьная",
		"Садовая", "Лесная", "Набережная", "Комсомольская", "Молодежная", "Октябрьская",
	}
	companies = []string{
		`ООО "ТехноСервис"`, "ИП Иванов", `ООО "Торговый дом"`, `ЗАО "СтройМаш"`,
		`ООО "Инновации"`, `АО "ЭнергоПром"`, `ООО "МеталлСервис"`, "ИП Петрова",
		`ООО "Логистика+"`, `ООО "Дизайн Студия"`,
	}
	mobileCodes  = []string{"903", "905", "916", "925", "999", "495", "812", "343"}
	mailboxWords = []string{"user", "test", "demo", "temp", "mail", "email"}
)

// PersonaOptions tunes Persona.
type PersonaOptions struct {
	// Email, when set, is used verbatim (e.g. a temporary mailbox address).
	Email string
	// Domain is used for generated addresses; DefaultDomain when empty.
	Domain string
	// Year anchors the age computation; the current year is typical.
	Year int
}

// Persona returns a DataBag with a value for every field type. The name
// parts, full name, date of birth and age agree with each other, as do the
// address parts.
func (g *Generator) Persona(opts PersonaOptions) model.DataBag {
	female := g.Bool()

	first := pick(g.rng, maleFirstNames)
	last := pick(g.rng, lastNames)
	middle := pick(g.rng, patronymicStems) + "ич"
	if female {
		first = pick(g.rng, femaleFirstNames)
		last += "а"
		middle = strings.TrimSuffix(middle, "ич") + "на"
	}

	year := 1970 + g.rng.IntN(40)
	month := g.between(1, 12)
	day := g.between(1, 28)
	refYear := opts.Year
	if refYear <= 0 {
		refYear = year + 30
	}
	age := refYear - year
	if age < 0 {
		age = 0
	}

	city := pick(g.rng, cities)
	street := pick(g.rng, streets)
	house := strconv.Itoa(g.between(1, 200))
	flat := strconv.Itoa(g.between(1, 150))

	email := strings.TrimSpace(opts.Email)
	if email == "" {
		domain := strings.TrimSpace(opts.Domain)
		if domain == "" {
			domain = DefaultDomain
		}
		email = fmt.Sprintf("%s%d@%s", pick(g.rng, mailboxWords), g.rng.IntN(10000), domain)
	}

	return model.DataBag{
		model.FieldTypeFirstName:   first,
		model.FieldTypeLastName:    last,
		model.FieldTypeMiddleName:  middle,
		model.FieldTypeFullName:    fmt.Sprintf("%s %s %s", last, first, middle),
		model.FieldTypePhone:       fmt.Sprintf("+7 (%s) %04d-%04d", pick(g.rng, mobileCodes), g.between(1000, 9999), g.between(1000, 9999)),
		model.FieldTypeEmail:       email,
		model.FieldTypeAddress:     fmt.Sprintf("г. %s, ул. %s, д. %s, кв. %s", city, street, house, flat),
		model.FieldTypeCity:        city,
		model.FieldTypeStreet:      street,
		model.FieldTypeHouse:       house,
		model.FieldTypeFlat:        flat,
		model.FieldTypeCompany:     pick(g.rng, companies),
		model.FieldTypeDateOfBirth: fmt.Sprintf("%02d.%02d.%04d", day, month, year),
		model.FieldTypePassport:    fmt.Sprintf("%04d %06d", g.between(1000, 9999), g.between(100000, 999999)),
		model.FieldTypeAge:         strconv.Itoa(age),
		model.FieldTypePostalCode:  fmt.Sprintf("%06d", g.between(100000, 699999)),
		model.FieldTypeCountry:     "Россия",
		model.FieldTypeRegion:      pick(g.rng, regions),
	}
}
