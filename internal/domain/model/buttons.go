package model

// Тексты кнопок главного меню. Обработчик текста сравнивает входящее сообщение с ними,
// поэтому менять их нужно вместе с маршрутизацией в dialog.
const (
	BtnRegister    = "📝 Регистрация"
	BtnTakeTest    = "🧪 Пройти тест"
	BtnMyResults   = "📊 Мои результаты"
	BtnCreateTest  = "➕ Создать тест"
	BtnWhoSolved   = "👥 Кто решал"
	BtnTestsList   = "📚 Тесты"
	BtnDeleteTest  = "🗑 Удалить тест"
	BtnExportPDF   = "📄 Отчет PDF"
	BtnAddAdmin    = "👑 Добавить админа"
	BtnRemoveAdmin = "❌ Убрать админа"
)

// Префиксы callback данных инлайн кнопок
const (
	AnswerCallbackPrefix    = "ans"
	WhoSolvedCallbackPrefix = "who"
)
