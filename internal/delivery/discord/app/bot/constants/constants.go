// internal/delivery/discord/app/bot/constants/constants.go
package constants

// Slash-команды приложения
const (
	CommandShowButton            = "show-button"
	CommandShowButtonDescription = "Shows a button!"
)

// Шаблоны custom_id компонентов
const (
	FormatHelloButton = "hello-button:{random_number}"

	ParamRandomNumber = "random_number"
)

// Диапазон случайного числа в кнопке (включительно)
const (
	RandomNumberMin = 0
	RandomNumberMax = 10
)

// ButtonTexts тексты кнопок
var ButtonTexts = struct {
	ClickMe string
}{
	ClickMe: "Click me",
}

// MessageTexts тексты ответов
var MessageTexts = struct {
	ShowButton   string
	HelloButton  string
	HandlerError string
}{
	ShowButton:   "Hello",
	HelloButton:  "Hello! Your random number was %d",
	HandlerError: "❌ Что-то пошло не так, попробуйте еще раз.",
}
