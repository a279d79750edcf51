package dialog

const (
	msgWelcome = "👋 Привет! Я помогу тебе создать индивидуальную программу тренировок.\n\n" +
		"Нажми /create чтобы начать подбор программы."

	msgAskGoal     = "🎯 Выбери свою основную цель:"
	msgAskLevel    = "📊 Твой уровень подготовки:"
	msgRejectGoal  = "Пожалуйста, выбери цель из списка"
	msgRejectLevel = "Пожалуйста, выбери уровень из списка"
	msgClosing     = "Удачных тренировок! 💪"
	msgCancelled   = "Создание программы отменено. Нажми /create чтобы начать заново."
	msgCatalogMiss = "😔 Не удалось подобрать программу. Попробуй ещё раз: /create"
)
