// Package docs Route Dashboard API.
//
// Сервис планирования маршрутов доставки. Хранит маршруты и их точки,
// вычисляет активность и приоритет точек по правилам расписания питания
// и позволяет редактировать точки в сессиях с отложенной фиксацией.
//
// Основные возможности:
// - CRUD маршрутов и точек
// - Проверка дубликатов кодов с учётом staged-изменений сессии
// - GeoJSON выгрузка точек маршрута
// - Журнал изменений точек (пишется воркером из Redis Stream)
//
// Спецификация OpenAPI генерируется swag из аннотаций обработчиков
// в пакет docs/swagger и отдаётся по /swagger/*.
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- application/geo+json
//
// swagger:meta
package docs
