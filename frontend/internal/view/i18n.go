package view

import "github.com/purplesanya/tg-bot/shared/domain"

const (
	LangEnglish domain.LanguageTag = "en"
	LangRussian domain.LanguageTag = "ru"
)

var catalog = map[domain.LanguageTag]map[string]string{
	LangEnglish: {
		"tasks_tab":                "Tasks",
		"dashboard_tab":            "Dashboard",
		"admin_tab":                "Admin",
		"compose_tab":              "New task",
		"settings_tab":             "Settings",
		"total_tasks":              "Total tasks",
		"active_tasks":             "Active tasks",
		"archived_tasks":           "Archived tasks",
		"total_executions":         "Total executions",
		"total_users":              "Total users",
		"total_active_tasks":       "Active tasks",
		"no_tasks_header":          "No tasks yet",
		"no_tasks_desc":            "Create your first recurring message to get started.",
		"no_archived_tasks_header": "No archived tasks",
		"no_archived_tasks_desc":   "Archived tasks will appear here.",
		"no_user_tasks":            "This user has no tasks.",
		"show_archived_btn":        "Show archived",
		"show_active_btn":          "Show active",
		"edit_btn":                 "Edit",
		"pause_btn":                "Pause",
		"resume_btn":               "Resume",
		"archive_btn":              "Archive",
		"unarchive_btn":            "Unarchive",
		"delete_btn":               "Delete",
		"archive_task_confirm":     "Archive this task?",
		"unarchive_task_confirm":   "Restore this task?",
		"delete_task_confirm":      "Delete this task permanently?",
		"logout_confirm":           "Log out of this account?",
		"every":                    "Every",
		"chats":                    "chats",
		"files":                    "files",
		"executed":                 " executed",
		"last_run":                 "Last run",
		"next_run":                 "Next run",
		"not_executed_yet":         "Not executed yet",
		"just_now":                 "Just now",
		"in_time":                  "in",
		"overdue":                  "overdue",
		"overdue_by":               "overdue by",
		"very_soon":                "very soon",
		"minutes":                  "minutes",
		"hours":                    "hours",
		"days":                     "days",
		"weeks":                    "weeks",
		"admin_badge":              "Admin",
		"last_login":               "Last login",
		"never":                    "Never",
		"task_scheduled":           "Task scheduled!",
		"task_updated":             "Task updated!",
		"task_paused":              "Task paused",
		"task_resumed":             "Task resumed",
		"task_archived":            "Task archived",
		"task_unarchived":          "Task restored",
		"task_deleted":             "Task deleted",
		"chats_refreshing":         "Refreshing chats...",
		"chats_refreshed":          "Chats refreshed",
		"code_sent":                "Code sent. Check your messages.",
		"login_success":            "Logged in successfully",
		"full_login_required":      "Please log in with your API credentials.",
		"switch_failed":            "Could not switch to this account. Please log in again.",
		"notifications_enabled":    "Notifications enabled",
		"notifications_disabled":   "Notifications disabled",
		"simplified_enabled":       "Simplified login enabled",
		"simplified_disabled":      "Simplified login disabled",
		"language_changed":         "Language changed",
		"max_files_error":          "You can attach at most 10 files",
		"redirecting":              "Redirecting...",
	},
	LangRussian: {
		"tasks_tab":                "Задачи",
		"dashboard_tab":            "Статистика",
		"admin_tab":                "Админ",
		"compose_tab":              "Новая задача",
		"settings_tab":             "Настройки",
		"total_tasks":              "Всего задач",
		"active_tasks":             "Активные задачи",
		"archived_tasks":           "В архиве",
		"total_executions":         "Всего отправок",
		"total_users":              "Пользователей",
		"total_active_tasks":       "Активных задач",
		"no_tasks_header":          "Задач пока нет",
		"no_tasks_desc":            "Создайте первое повторяющееся сообщение.",
		"no_archived_tasks_header": "Архив пуст",
		"no_archived_tasks_desc":   "Здесь появятся архивные задачи.",
		"no_user_tasks":            "У пользователя нет задач.",
		"show_archived_btn":        "Показать архив",
		"show_active_btn":          "Показать активные",
		"edit_btn":                 "Изменить",
		"pause_btn":                "Пауза",
		"resume_btn":               "Продолжить",
		"archive_btn":              "В архив",
		"unarchive_btn":            "Восстановить",
		"delete_btn":               "Удалить",
		"archive_task_confirm":     "Отправить задачу в архив?",
		"unarchive_task_confirm":   "Восстановить задачу?",
		"delete_task_confirm":      "Удалить задачу навсегда?",
		"logout_confirm":           "Выйти из этого аккаунта?",
		"every":                    "Каждые",
		"chats":                    "чатов",
		"files":                    "файлов",
		"executed":                 " отправок",
		"last_run":                 "Последний запуск",
		"next_run":                 "Следующий",
		"not_executed_yet":         "Ещё не выполнялась",
		"just_now":                 "Только что",
		"in_time":                  "через",
		"overdue":                  "просрочено",
		"overdue_by":               "просрочено на",
		"very_soon":                "очень скоро",
		"minutes":                  "минут",
		"hours":                    "часов",
		"days":                     "дней",
		"weeks":                    "недель",
		"admin_badge":              "Админ",
		"last_login":               "Последний вход",
		"never":                    "Никогда",
		"task_scheduled":           "Задача создана!",
		"task_updated":             "Задача обновлена!",
		"task_paused":              "Задача приостановлена",
		"task_resumed":             "Задача возобновлена",
		"task_archived":            "Задача в архиве",
		"task_unarchived":          "Задача восстановлена",
		"task_deleted":             "Задача удалена",
		"chats_refreshing":         "Обновление чатов...",
		"chats_refreshed":          "Чаты обновлены",
		"code_sent":                "Код отправлен. Проверьте сообщения.",
		"login_success":            "Вход выполнен",
		"full_login_required":      "Войдите с API-данными.",
		"switch_failed":            "Не удалось переключиться на аккаунт. Войдите снова.",
		"notifications_enabled":    "Уведомления включены",
		"notifications_disabled":   "Уведомления выключены",
		"simplified_enabled":       "Упрощённый вход включён",
		"simplified_disabled":      "Упрощённый вход выключен",
		"language_changed":         "Язык изменён",
		"max_files_error":          "Можно прикрепить не более 10 файлов",
		"redirecting":              "Перенаправление...",
	},
}

// Catalog looks up display strings for one language, falling back to
// English and then to the key itself.
type Catalog struct {
	lang domain.LanguageTag
}

func NewCatalog(lang domain.LanguageTag) Catalog {
	if _, ok := catalog[lang]; !ok {
		lang = LangEnglish
	}
	return Catalog{lang: lang}
}

func (c Catalog) Lang() domain.LanguageTag {
	if c.lang == "" {
		return LangEnglish
	}
	return c.lang
}

func (c Catalog) T(key string) string {
	if s, ok := catalog[c.Lang()][key]; ok {
		return s
	}
	if s, ok := catalog[LangEnglish][key]; ok {
		return s
	}
	return key
}
